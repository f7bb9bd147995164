package models

// InterpreterEventType enumerates the callback boundary of the external
// test interpreter.
type InterpreterEventType string

const (
	EventKeywordStart InterpreterEventType = "keyword_start"
	EventKeywordEnd   InterpreterEventType = "keyword_end"
	EventSuiteEnd     InterpreterEventType = "suite_end"
)

// InterpreterEvent is one lifecycle event read from the interpreter's
// listener stream.
type InterpreterEvent struct {
	Type    InterpreterEventType `json:"type"`
	Keyword string               `json:"keyword,omitempty"`
	Status  string               `json:"status,omitempty"` // PASS / FAIL for keyword_end and suite_end
	Message string               `json:"message,omitempty"`
}

// MonitorEvent is the fan-out unit of the progress monitor: either a worker
// progress event or a device state change, never both.
type MonitorEvent struct {
	Progress *ProgressEvent     `json:"progress,omitempty"`
	Device   *DeviceStateChange `json:"device,omitempty"`
}
