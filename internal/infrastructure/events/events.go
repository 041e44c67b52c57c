// Package events publishes issue lifecycle events. Publishing is best-effort:
// callers log failures and carry on, since the write that caused the event has
// already committed.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	SubjectIssueReported = "issue.reported"
	SubjectIssueClaimed  = "issue.claimed"
	SubjectChatMessage   = "chat.message"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

type IssueReported struct {
	IssueID      string    `json:"issueId"`
	UserID       string    `json:"userId"`
	DeviceType   string    `json:"deviceType,omitempty"`
	VehicleType  string    `json:"vehicleType,omitempty"`
	DateReported time.Time `json:"dateReported"`
}

type IssueClaimed struct {
	IssueID    string    `json:"issueId"`
	UserID     string    `json:"userId"`
	RepairerID string    `json:"repairerId"`
	ClaimedAt  time.Time `json:"claimedAt"`
}

type ChatMessage struct {
	IssueID   string    `json:"issueId"`
	ChatID    string    `json:"chatId"`
	MessageID string    `json:"messageId"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Noop discards every event. It is used when NATS_URL is not configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, subject string, payload interface{}) error {
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

type Recorded struct {
	Subject string
	Payload interface{}
}

func (r *Recorder) Publish(ctx context.Context, subject string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Subject: subject, Payload: payload})
	return nil
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Subjects returns the subjects published so far, in order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Subject)
	}
	return out
}
