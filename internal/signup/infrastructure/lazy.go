package infrastructure

import "sync"

// Lazy loads a client once per process. The first Get runs the loader; every
// later Get, concurrent or not, gets the same value and error. Nothing is
// ever reloaded.
type Lazy[T any] struct {
	load func() (T, error)
}

func NewLazy[T any](loader func() (T, error)) *Lazy[T] {
	return &Lazy[T]{load: sync.OnceValues(loader)}
}

func (l *Lazy[T]) Get() (T, error) {
	return l.load()
}
