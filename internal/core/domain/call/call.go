package call

import (
	"fmt"
	"strings"
	"time"
)

// Call is a call-history record.
type Call struct {
	ID         string     `json:"id"`
	ContactID  string     `json:"customerId,omitempty"`
	AgentID    string     `json:"agentId,omitempty"`
	VendorID   string     `json:"vendorId,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`
	Duration   int        `json:"duration"`
	Type       CallType   `json:"type,omitempty"`
	Status     CallStatus `json:"status,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  string     `json:"created_at,omitempty"`
	Recording  string     `json:"recordingUrl,omitempty"`
	FromNumber string     `json:"from,omitempty"`
	ToNumber   string     `json:"to,omitempty"`
}

type CallType string

const (
	CallTypeIncoming CallType = "incoming"
	CallTypeOutgoing CallType = "outgoing"
)

type CallStatus string

const (
	CallStatusCompleted CallStatus = "completed"
	CallStatusMissed    CallStatus = "missed"
	CallStatusScheduled CallStatus = "scheduled"
)

// CurrentCall is the in-progress call reported by the current-call endpoint.
type CurrentCall struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agentId"`
	CallID    string    `json:"callId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	CurrentStatusActive = "ACTIVE"
	CurrentStatusOnHold = "ON_HOLD"
)

// IsLive reports whether the call should appear on the live-calls screen.
func (c *CurrentCall) IsLive() bool {
	return c.Status == CurrentStatusActive || c.Status == CurrentStatusOnHold
}

// LiveCall is the live-calls screen row.
type LiveCall struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Number      string    `json:"number"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Duration    string    `json:"duration"`
	IsMuted     bool      `json:"isMuted"`
	IsRecording bool      `json:"isRecording"`
}

// ToLive renders c as seen at now. It returns false when the call is not live.
func (c *CurrentCall) ToLive(now time.Time) (LiveCall, bool) {
	if c == nil || !c.IsLive() {
		return LiveCall{}, false
	}
	return LiveCall{
		ID:        c.ID,
		Name:      "Agent " + c.AgentID,
		Number:    "ID: " + c.CallID,
		Status:    strings.ToLower(c.Status),
		CreatedAt: c.CreatedAt,
		Duration:  FormatDuration(now.Sub(c.CreatedAt)),
	}, true
}

// FormatDuration renders d as mm:ss, or hh:mm:ss once it reaches an hour.
// Negative durations (clock skew) render as zero.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
