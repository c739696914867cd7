package types

type SessionEndRequest struct {
	SessionID int64 `json:"session_id"`
}

type SessionEndResponse struct {
	OK         bool   `json:"ok"`
	Ended      bool   `json:"ended"` // false = already ended or not found
	ServerTime string `json:"server_time"`
}

// SessionEndAllResponse reports a single-operator-mode reset. Sessions
// holds the pre-image of every session that was still active, in the state
// it had before being closed.
type SessionEndAllResponse struct {
	OK         bool      `json:"ok"`
	EndedCount int       `json:"ended_count"`
	Sessions   []Session `json:"sessions,omitempty"`
	ServerTime string    `json:"server_time"`
}
