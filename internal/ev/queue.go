// Package ev provides the event queue that serializes all state
// mutation onto a single goroutine.
package ev

import (
	"errors"

	"deedles.dev/xsync/cq"
)

type Queue = cq.BulkQueue[func() error, *Events]

func NewQueue() *Queue {
	return cq.New(func(v []func() error) *Events {
		return &Events{
			events: v,
		}
	})
}

// Drain flushes whatever events are ready on q without blocking.
func Drain(q *Queue) error {
	select {
	case evs := <-q.Get():
		return evs.Flush()
	default:
		return nil
	}
}

// Events represents a series of events from an event queue.
type Events struct {
	events []func() error
}

// Flush processes all of the events represented by q.
func (q *Events) Flush() error {
	return errors.Join(Flush(q)...)
}

func Flush(queue *Events) (errs []error) {
	for _, ev := range queue.events {
		err := ev()
		if err != nil {
			errs = append(errs, err)
		}
	}
	queue.events = nil
	return errs
}
