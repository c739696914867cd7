// Package events is the notification boundary between the ingestion core
// and the excluded UI/IPC layer: discrete, self-describing events fanned
// out to whoever subscribed.
package events

import (
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

type Type string

const (
	TypeTagDetected    Type = "tag-detected"
	TypeInvalidScan    Type = "invalid-scan"
	TypeScanThrottled  Type = "scan-throttled"
	TypeScanResult     Type = "scan-result"
	TypeSessionStarted Type = "session-started"
	TypeSessionEnded   Type = "session-ended"
)

// Event is one notification. Only the fields relevant to the Type are set.
type Event struct {
	ID   string    `json:"id"`
	Type Type      `json:"type"`
	At   time.Time `json:"at"`

	Tag        string            `json:"tag,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Status     string            `json:"status,omitempty"`
	Message    string            `json:"message,omitempty"`
	SessionID  int64             `json:"session_id,omitempty"`
	IdentityID int64             `json:"identity_id,omitempty"`
	Record     *types.ScanRecord `json:"record,omitempty"`
}

// Publisher is what the services see. The zero-coupling direction matters:
// the core publishes, it never knows who listens.
type Publisher interface {
	Publish(ev Event)
}

// Nop discards all events. Default when no UI is attached.
type Nop struct{}

func (Nop) Publish(Event) {}
