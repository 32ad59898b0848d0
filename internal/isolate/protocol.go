package isolate

import "github.com/joeycumines/escapesentry/internal/model"

// childRequest is sent from the parent to a re-exec'd probe child on
// stdin, as a single line of JSON.
type childRequest struct {
	Target string `json:"target"`
	Input  string `json:"input"`
}

// childResult is sent from a probe child back to the parent on the
// dedicated result pipe (fd 3), as a single line of JSON.
type childResult struct {
	Output         string              `json:"output"`
	Error          string              `json:"error"`
	Crashed        bool                `json:"crashed"`
	EscapeDetected bool                `json:"escape_detected"`
	EscapeDetails  model.EscapeDetails `json:"escape_details"`
}
