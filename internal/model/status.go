package model

// Status is the per-session indexing state visible to clients.
type Status string

const (
	StatusNoSession Status = "no_session"
	StatusUploaded  Status = "uploaded"
	StatusIndexing  Status = "indexing"
	StatusReady     Status = "ready"
	StatusError     Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNoSession, StatusUploaded, StatusIndexing, StatusReady, StatusError:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal status
// transition. A re-upload restarts the machine at "uploaded" from any
// settled state; "ready" is only reachable through "indexing".
func (s Status) CanTransition(next Status) bool {
	switch next {
	case StatusUploaded:
		// any state accepts a fresh upload, including a stale "indexing"
		// left behind by a crashed run
		return s.Valid()
	case StatusIndexing:
		return s == StatusUploaded
	case StatusReady:
		return s == StatusIndexing
	case StatusError:
		return s == StatusUploaded || s == StatusIndexing
	case StatusNoSession:
		return true
	}
	return false
}

// StatusRecord is the persisted status document for a session. It is the
// single source of truth for whether chat is enabled.
type StatusRecord struct {
	Status   Status `json:"status"`
	TS       int64  `json:"ts"`
	Filename string `json:"filename,omitempty"`
	PDFKey   string `json:"pdf_key,omitempty"`
	Message  string `json:"message,omitempty"`
}
