package listing

import (
	"slices"
	"sync"
)

type subscriber[T any] struct {
	id int
	fn func(T)
}

// subscribers is a list of callbacks notified in subscription order.
type subscribers[T any] struct {
	mu   sync.Mutex
	next int
	list []subscriber[T]
}

func (s *subscribers[T]) add(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	id := s.next
	s.list = append(s.list, subscriber[T]{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.list = slices.DeleteFunc(s.list, func(sub subscriber[T]) bool {
			return sub.id == id
		})
	}
}

func (s *subscribers[T]) notify(v T) {
	s.mu.Lock()
	list := slices.Clone(s.list)
	s.mu.Unlock()

	for _, sub := range list {
		sub.fn(v)
	}
}
