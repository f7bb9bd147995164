package models

// API response shapes, used by the HTTP layer and the generated docs.

type ErrorResponse struct {
	Status string      `json:"status" example:"error"`
	Error  ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"bad request"`
}

type MessageResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message"`
}

type DeviceResponse struct {
	Status string            `json:"status" example:"ok"`
	Device *DeviceDescriptor `json:"device"`
}

type DeviceListResponse struct {
	Status  string              `json:"status" example:"ok"`
	Devices []*DeviceDescriptor `json:"devices"`
}

type SendResponse struct {
	Status   string `json:"status" example:"ok"`
	Response string `json:"response,omitempty"`
}

type StartRunResponse struct {
	Status string `json:"status" example:"ok"`
	RunID  string `json:"run_id"`
}
