package scanner

import "sync"

// RenderTarget is the surface the preview is drawn on. Subscribers are told
// when it becomes usable (true) or goes away (false).
type RenderTarget interface {
	Available() bool
	Subscribe(fn func(available bool)) *Subscription
}

// Subscription is returned by RenderTarget.Subscribe. Cancel is idempotent.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps cancel so it runs at most once.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Surface is a RenderTarget whose availability is driven by its owner (a
// view, or the headless runner). The zero value is unavailable and usable.
type Surface struct {
	mu        sync.Mutex
	available bool
	nextID    int
	subs      map[int]func(bool)
}

func (s *Surface) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *Surface) Subscribe(fn func(bool)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(bool))
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return NewSubscription(func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	})
}

// Subscribers returns the number of live subscriptions.
func (s *Surface) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// SetAvailable records availability and notifies subscribers on change.
// Subscribers run on the caller's goroutine.
func (s *Surface) SetAvailable(available bool) {
	s.mu.Lock()
	if s.available == available {
		s.mu.Unlock()
		return
	}
	s.available = available
	fns := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(available)
	}
}
