// @title HIL Test Service API
// @version 1.0.0
// @description API for orchestrating hardware-in-the-loop test runs: bench device control, keyword validation and scripted run execution with progress streaming.
// @host localhost:8082
// @BasePath /api/v1
package main

import "github.com/ssbtech/hilService/internal/app"

func main() {
	// Create and run a new fx application instance
	app.New().Run()
}
