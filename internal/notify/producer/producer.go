// Package producer emits notifications to a message broker (Kafka).
package producer

import (
	"context"

	"club-control-plane/internal/notify"
)

// Producer emits notifications. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single notification. Implementations may block briefly;
	// call from a goroutine if needed.
	Emit(ctx context.Context, n *notify.Notification) error
	// Close releases resources (e.g. the Kafka writer). Safe to call if already closed.
	Close() error
}

// Fanout returns a Notifier that emits to every sink. Each sink is tried even
// when an earlier one fails; the first error is returned.
func Fanout(sinks ...notify.Notifier) notify.Notifier {
	return fanout(sinks)
}

type fanout []notify.Notifier

func (f fanout) Emit(ctx context.Context, n *notify.Notification) error {
	var firstErr error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
