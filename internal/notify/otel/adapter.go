// Package otel adapts the notification sink to OTel log records.
package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"club-control-plane/internal/notify"
)

// NewNotifier returns a Notifier that sends notifications as OTel log records
// via the given LoggerProvider. If provider is nil, returns a no-op notifier.
func NewNotifier(provider *sdklog.LoggerProvider) notify.Notifier {
	if provider == nil {
		return notify.Nop{}
	}
	return &otelNotifier{logger: provider.Logger("club.notify")}
}

type otelNotifier struct {
	logger otellog.Logger
}

// Emit converts the notification to an OTel log record and emits it. Best-effort.
func (e *otelNotifier) Emit(ctx context.Context, n *notify.Notification) error {
	if n == nil {
		return nil
	}
	rec := otellog.Record{}
	if !n.CreatedAt.IsZero() {
		rec.SetTimestamp(n.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetBody(otellog.StringValue(n.MessageKey))
	if n.Severity != "" {
		rec.AddAttributes(otellog.String("severity", n.Severity))
	}
	if n.Transition != "" {
		rec.AddAttributes(otellog.String("transition", n.Transition))
	}
	if n.ClubID != "" {
		rec.AddAttributes(otellog.String("club_id", n.ClubID))
	}
	if n.ActorID != "" {
		rec.AddAttributes(otellog.String("actor_id", n.ActorID))
	}
	if n.TargetID != "" {
		rec.AddAttributes(otellog.String("target_id", n.TargetID))
	}
	if n.Source != "" {
		rec.AddAttributes(otellog.String("source", n.Source))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
