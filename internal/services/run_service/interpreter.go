package run_service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/ssbtech/hilService/internal/config"
	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/middleware/logging"
)

// RobotInterpreter launches the external Robot Framework interpreter, one
// process per run, and forwards its listener event stream. The listener
// prints one JSON object per line on stdout (keyword_start, keyword_end,
// suite_end); everything else the process writes is ignored.
type RobotInterpreter struct {
	bin       string
	outputDir string
	libPath   string
	logger    *logging.Logger
}

func NewRobotInterpreter(cfg *config.AppConfig, logger *logging.Logger) interfaces.Interpreter {
	return &RobotInterpreter{
		bin:       cfg.Runner.RobotBin,
		outputDir: cfg.Runner.OutputDir,
		libPath:   cfg.Runner.LibPath,
		logger:    logger.WithPrefix("INTERPRETER"),
	}
}

// Run starts one interpreter process for scriptPath. The returned channel
// closes when the process exits; cancelling ctx terminates the process.
func (r *RobotInterpreter) Run(ctx context.Context, scriptPath string) (<-chan models.InterpreterEvent, error) {
	cmd := exec.CommandContext(ctx, r.bin,
		"--outputdir", r.outputDir,
		"--pythonpath", r.libPath,
		"--listener", "ProgressListener",
		"--console", "none",
		scriptPath,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("attaching to interpreter stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting interpreter %q: %w", r.bin, err)
	}
	r.logger.Info("Interpreter started", "pid", cmd.Process.Pid, "script", scriptPath)

	events := make(chan models.InterpreterEvent)
	go func() {
		defer close(events)

		scanner := bufio.NewScanner(stdout)
	scan:
		for scanner.Scan() {
			var ev models.InterpreterEvent
			if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
				// Interleaved non-listener output, skip it.
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				break scan
			}
		}

		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			r.logger.Warn("Interpreter exited with error", "error", err)
		}
		r.logger.Info("Interpreter finished", "script", scriptPath)
	}()

	return events, nil
}
