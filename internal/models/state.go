// internal/models/state.go
package models

import "time"

// AppState is a snapshot of one session's page state.
// At rest at most one of Breakdown and ErrorMessage is set.
type AppState struct {
	ScriptText   string           `json:"script_text"`
	Breakdown    *ScriptBreakdown `json:"breakdown"`
	IsLoading    bool             `json:"is_loading"`
	ErrorMessage string           `json:"error_message,omitempty"`
	ErrorKind    string           `json:"error_kind,omitempty"`
	RequestID    uint64           `json:"request_id"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// HasError reports whether an error message is present
func (s AppState) HasError() bool {
	return s.ErrorMessage != ""
}
