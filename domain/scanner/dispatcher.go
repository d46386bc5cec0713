package scanner

import (
	"context"
	"sync"
)

// Dispatcher is an unbounded FIFO of events consumed on one control
// goroutine. Post never blocks, events are neither coalesced nor dropped
// (except after Close), and they are handled in arrival order.
type Dispatcher struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	signal chan struct{}
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{signal: make(chan struct{}, 1)}
}

// Post enqueues ev. It reports false if the dispatcher is closed.
func (d *Dispatcher) Post(ev Event) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.queue = append(d.queue, ev)
	d.mu.Unlock()
	select {
	case d.signal <- struct{}{}:
	default:
	}
	return true
}

// Len returns the number of queued events.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Drain handles the events queued at the time of the call and returns how
// many were handled. Events posted by handle are left for the next Drain.
func (d *Dispatcher) Drain(handle func(Event)) int {
	d.mu.Lock()
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, ev := range batch {
		handle(ev)
	}
	return len(batch)
}

// Run handles events until ctx is done or the dispatcher is closed.
func (d *Dispatcher) Run(ctx context.Context, handle func(Event)) error {
	for {
		d.Drain(handle)
		d.mu.Lock()
		closed := d.closed && len(d.queue) == 0
		d.mu.Unlock()
		if closed {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.signal:
		}
	}
}

// Close stops accepting events. Queued events can still be drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	select {
	case d.signal <- struct{}{}:
	default:
	}
}
