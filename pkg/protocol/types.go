package protocol

// Response status values. Every response carries exactly one of these.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request represents a command sent to the bridge.
type Request struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Response represents the bridge's answer to a single request.
type Response struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Traceback string         `json:"traceback,omitempty"`
}

// OK reports whether the response carries a success status.
func (r *Response) OK() bool {
	return r.Status == StatusSuccess
}

// Success builds a success response.
func Success(message string, data map[string]any) *Response {
	return &Response{Status: StatusSuccess, Message: message, Data: data}
}

// Error builds an error response. traceback may be empty.
func Error(message, traceback string) *Response {
	return &Response{Status: StatusError, Message: message, Traceback: traceback}
}

// Command type values understood by the bridge.
const (
	CmdPing         = "ping"
	CmdCreateSphere = "create_sphere"
	CmdCreateCurve  = "create_curve"
	CmdRunScript    = "run_script"
	CmdRefreshView  = "refresh_view"
)
