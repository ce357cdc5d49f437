package app

// SessionChangedMsg is sent when the open session reports a change. Changes
// identifies the subscription it came from so messages from a session that
// has since been closed can be ignored.
type SessionChangedMsg struct {
	Changes <-chan struct{}
}

// SessionClosedMsg is sent when a session subscription ends.
type SessionClosedMsg struct {
	Changes <-chan struct{}
}

// ArrivalMsg is sent when a transcript for PatientID lands in the inbox.
type ArrivalMsg struct {
	PatientID string
}

// ExportDoneMsg carries the result of a .docx export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}

// ClearNoticeMsg clears the notice line after a timeout.
type ClearNoticeMsg struct{}
