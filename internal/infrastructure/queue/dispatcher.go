package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/checkin-system/users-api/internal/core/domain"
	"github.com/checkin-system/users-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

var (
	// ErrQueueFull is returned by Publish when the target worker's buffer is full.
	ErrQueueFull = errors.New("event queue full")
	// ErrDispatcherClosed is returned by Publish once Close has been called.
	ErrDispatcherClosed = errors.New("event dispatcher closed")
)

// Dispatcher hands check-in events to a fixed set of workers that forward them
// to the underlying publisher off the request path. Events are sharded on the
// user id, so a user's events keep their order.
type Dispatcher struct {
	workers []chan domain.CheckInEvent
	next    ports.EventPublisher
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, next ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.CheckInEvent, numWorkers),
		next:    next,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.CheckInEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Close lets workers drain what is
// queued; cancelling ctx makes them return right away, dropping the rest.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish enqueues event without blocking.
func (d *Dispatcher) Publish(_ context.Context, event domain.CheckInEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.workers[d.shardIndex(event.UserID)] <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the workers to finish. Calling
// it more than once is a no-op.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) shardIndex(userID int64) int {
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.CheckInEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			// Detached from the request that produced the event.
			if err := d.next.Publish(context.WithoutCancel(ctx), event); err != nil {
				d.log.Error().Err(err).
					Str("event", string(event.Type)).
					Int64("check_in_id", event.CheckInID).
					Int("worker_id", id).
					Msg("event publishing failed")
			}
		}
	}
}
