package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CheckInEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.CheckInEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func TestDispatcher_DeliversInOrderPerUser(t *testing.T) {
	next := &recordingPublisher{}
	d := NewDispatcher(3, next, zerolog.Nop())
	d.Start(context.Background())

	for i := int64(1); i <= 20; i++ {
		if err := d.Publish(context.Background(), domain.CheckInEvent{Type: domain.CheckInCreated, CheckInID: i, UserID: i % 2}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	d.Close()

	if len(next.events) != 20 {
		t.Fatalf("expected 20 events forwarded, got %d", len(next.events))
	}
	last := map[int64]int64{}
	for _, e := range next.events {
		if e.CheckInID < last[e.UserID] {
			t.Fatalf("events for user %d out of order", e.UserID)
		}
		last[e.UserID] = e.CheckInID
	}
}

func TestDispatcher_FullBuffer(t *testing.T) {
	d := NewDispatcher(1, &recordingPublisher{}, zerolog.Nop())

	// Not started: nothing drains the buffer.
	for i := 0; i < channelBuffer; i++ {
		if err := d.Publish(context.Background(), domain.CheckInEvent{UserID: 1}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}
	if err := d.Publish(context.Background(), domain.CheckInEvent{UserID: 1}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_PublishErrorsAreLogged(t *testing.T) {
	next := &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(1, next, zerolog.Nop())
	d.Start(context.Background())

	if err := d.Publish(context.Background(), domain.CheckInEvent{UserID: 5}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	d.Close()

	if len(next.events) != 1 {
		t.Fatalf("expected the event to reach the publisher")
	}
}

func TestDispatcher_PublishAfterClose(t *testing.T) {
	next := &recordingPublisher{}
	d := NewDispatcher(2, next, zerolog.Nop())
	d.Start(context.Background())
	d.Close()

	if err := d.Publish(context.Background(), domain.CheckInEvent{UserID: 1}); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("expected ErrDispatcherClosed, got %v", err)
	}
	// Second Close must not panic on the already closed channels.
	d.Close()

	if len(next.events) != 0 {
		t.Fatalf("expected no events forwarded, got %d", len(next.events))
	}
}

type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) Publish(_ context.Context, _ domain.CheckInEvent) error {
	select {
	case p.started <- struct{}{}:
	default:
	}
	<-p.release
	return nil
}

func TestDispatcher_CancelStopsWorkers(t *testing.T) {
	next := &blockingPublisher{started: make(chan struct{}, 1), release: make(chan struct{})}
	d := NewDispatcher(1, next, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		if err := d.Publish(context.Background(), domain.CheckInEvent{UserID: 1}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}
	<-next.started

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()

	cancel()
	close(next.release)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not return after the worker context was cancelled")
	}
}
