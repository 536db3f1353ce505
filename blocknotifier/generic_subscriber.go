package blocknotifier

import "sync"

// GenericSubscriberImpl fans out published values to named subscribers. Each subscriber
// channel holds at most one pending value: a slow reader only sees the latest one.
type GenericSubscriberImpl[T any] struct {
	// map of subscribers with names
	subs map[chan T]string
	mu   sync.RWMutex
}

func NewGenericSubscriberImpl[T any]() *GenericSubscriberImpl[T] {
	return &GenericSubscriberImpl[T]{
		subs: make(map[chan T]string),
	}
}

func (g *GenericSubscriberImpl[T]) Subscribe(subscriberName string) <-chan T {
	ch := make(chan T, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subs[ch] = subscriberName
	return ch
}

func (g *GenericSubscriberImpl[T]) Publish(data T) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for ch := range g.subs {
		select {
		case ch <- data:
			continue
		default:
		}
		// replace the stale pending value
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- data:
		default:
		}
	}
}
