// Package worker consumes review events and replays the idempotent
// reconciliation pass, repairing mirror drift and stale averages left
// behind by partial multi-step writes.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/review-platform/internal/platform/events"
	"github.com/example/review-platform/internal/reviews"
)

const (
	subjectWildcard = "reviews.*"
	durableName     = "reviews_reconcile"
)

// Reconciler pulls review events from JetStream and reconciles the affected
// title. Reconcile is idempotent, so at-least-once delivery is sufficient.
type Reconciler struct {
	svc *reviews.Service
	log *zap.Logger

	batchSize int
	maxWait   time.Duration
}

func NewReconciler(svc *reviews.Service, log *zap.Logger) *Reconciler {
	return &Reconciler{
		svc:       svc,
		log:       log,
		batchSize: 50,
		maxWait:   2 * time.Second,
	}
}

// Start subscribes and processes events until ctx is cancelled. Errors on
// individual events Nak the message for redelivery; subscription failure is
// returned so the caller can decide whether to run without reconciliation.
func (r *Reconciler) Start(ctx context.Context, nc *nats.Conn) error {
	js, err := nc.JetStream()
	if err != nil {
		return err
	}
	sub, err := js.PullSubscribe(subjectWildcard, durableName)
	if err != nil {
		return err
	}

	go r.loop(ctx, sub)
	return nil
}

func (r *Reconciler) loop(ctx context.Context, sub *nats.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := sub.Fetch(r.batchSize, nats.MaxWait(r.maxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			r.log.Warn("reconciler: fetch failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, m := range msgs {
			if err := r.handle(ctx, m); err != nil {
				r.log.Warn("reconciler: event failed",
					zap.String("subject", m.Subject), zap.Error(err))
				_ = m.Nak()
				continue
			}
			_ = m.Ack()
		}
	}
}

func (r *Reconciler) handle(ctx context.Context, m *nats.Msg) error {
	var ev events.Event
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		// Malformed events are acked away; redelivery cannot fix them.
		r.log.Warn("reconciler: malformed event dropped", zap.String("subject", m.Subject))
		return nil
	}
	mediaID := strings.TrimSpace(ev.MediaID)
	if mediaID == "" {
		return nil
	}
	return r.svc.Reconcile(ctx, mediaID)
}
