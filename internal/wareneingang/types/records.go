package types

import "time"

// Identity is a row in the identity registry: the real-world actor behind
// a hex tag. Immutable once assigned apart from the active flag.
type Identity struct {
	ID        int64     `json:"id"`
	Tag       string    `json:"tag"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a bounded period during which scans are attributed to one
// identity. At most one session per identity is active at any time; a
// session is never mutated after active=false.
type Session struct {
	ID         int64      `json:"id"`
	IdentityID int64      `json:"identity_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Active     bool       `json:"active"`
}

// ScanRecord is one persisted payload capture. Append-only, immutable.
type ScanRecord struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	Payload    string    `json:"payload"`
	CapturedAt time.Time `json:"captured_at"`
	Valid      bool      `json:"valid"`
}
