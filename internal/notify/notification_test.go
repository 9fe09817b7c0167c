package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type captureNotifier struct {
	mu   sync.Mutex
	got  []*Notification
	fail error
}

func (c *captureNotifier) Emit(_ context.Context, n *Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	cp := *n
	c.got = append(c.got, &cp)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func TestEmitAsyncDelivers(t *testing.T) {
	sink := &captureNotifier{}
	EmitAsync(sink, context.Background(), &Notification{Severity: "success", MessageKey: "membership.applied"})

	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sink.count() != 1 {
		t.Fatal("notification not delivered")
	}
}

func TestEmitAsyncNilSafe(t *testing.T) {
	// Neither a nil notifier nor a nil notification may panic.
	EmitAsync(nil, context.Background(), &Notification{})
	EmitAsync(&captureNotifier{}, context.Background(), nil)
}

func TestEmitAsyncSwallowsErrors(t *testing.T) {
	sink := &captureNotifier{fail: errors.New("broker down")}
	EmitAsync(sink, context.Background(), &Notification{MessageKey: "x"})
	time.Sleep(20 * time.Millisecond) // the goroutine only logs the failure
}
