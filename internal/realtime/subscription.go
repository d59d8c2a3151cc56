package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LoadFunc reads the full current value of a store path
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Subscription delivers the full value of a store path every time it changes.
// It is not restartable: once cancelled its channel is closed for good.
type Subscription[T any] struct {
	c      chan T
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Watch subscribes to path on hub. The first snapshot is loaded immediately,
// then one fresh snapshot follows every change notification. Failed loads are
// logged and skipped; the subscription keeps waiting for the next change.
func Watch[T any](ctx context.Context, hub *Hub, path string, load LoadFunc[T], log zerolog.Logger) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		c:      make(chan T),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Register before the first load so no write between load and register is missed
	w, unwatch := hub.watch(path)
	notify(w)

	go func() {
		defer close(s.done)
		defer close(s.c)
		defer unwatch()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.wake:
			}

			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).Str("path", path).Msg("Failed to load snapshot")
				continue
			}

			select {
			case s.c <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	return s
}

// C returns the snapshot channel. It is closed after Cancel.
func (s *Subscription[T]) C() <-chan T {
	return s.c
}

// Cancel stops the subscription and waits for its goroutine to exit
func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed once the subscription has stopped
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}
