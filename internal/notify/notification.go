// Package notify is the outcome messaging sink: every transition outcome is
// emitted as a (severity, message_key) notification. The core never owns
// presentation text; consumers map message keys to copy.
package notify

import (
	"context"
	"log"
	"time"
)

// Notification is one outcome event. MessageKey identifies the
// human-readable copy (e.g. "membership.approved"); Severity grades it.
type Notification struct {
	Severity   string    `json:"severity"`
	MessageKey string    `json:"messageKey"`
	Transition string    `json:"transition,omitempty"`
	ClubID     string    `json:"clubId,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	TargetID   string    `json:"targetId,omitempty"`
	Source     string    `json:"source,omitempty"`
	Metadata   []byte    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Notifier emits notifications. Callers use it best-effort: log and ignore errors.
type Notifier interface {
	Emit(ctx context.Context, n *Notification) error
}

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops
// before shutting down OTel providers, so in-flight async emits can finish.
// Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the request is
// not blocked. notifier and n may be nil; then nothing is started. The
// goroutine uses context.Background() so request cancellation does not abort
// an in-flight emit.
func EmitAsync(notifier Notifier, ctx context.Context, n *Notification) {
	if notifier == nil || n == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := notifier.Emit(emitCtx, n); err != nil {
			log.Printf("notify: async emit failed: %v", err)
		}
	}()
}

// Nop is a Notifier that discards everything. Used when no sink is configured.
type Nop struct{}

func (Nop) Emit(context.Context, *Notification) error { return nil }
