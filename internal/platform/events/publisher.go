// Package events provides a fire-and-forget NATS publisher for review events.
// The rating service publishes after every mutation; the reconciliation worker
// and the search-cache invalidation both feed off these subjects.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subject constants for every review event type.
const (
	SubjectReviewSubmitted = "reviews.submitted"
	SubjectReviewEdited    = "reviews.edited"
	SubjectReviewDeleted   = "reviews.deleted"
	SubjectPostCreated     = "posts.created"
)

// Event is the canonical envelope sent to all reviews.* and posts.* subjects.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	MediaID    string         `json:"media_id,omitempty"`
	User       string         `json:"user,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher publishes review events to NATS JetStream.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New creates a Publisher using an existing JetStream context.
// Pass js=nil to get a no-op stub (useful in tests and setups without NATS).
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	return &Publisher{js: js, log: log}
}

// Publish sends an event asynchronously (fire-and-forget).
// Failures are logged as warnings and never surface to the caller: a dropped
// event only delays reconciliation, it never fails a user request.
func (p *Publisher) Publish(subject, eventName, mediaID, user string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	ev := Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		MediaID:    mediaID,
		User:       user,
		OccurredAt: time.Now().UTC(),
		Properties: props,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
