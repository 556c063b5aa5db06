// README: Serial coordinator queue; every navigation state mutation runs on its single goroutine.
package dispatch

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrClosed = errors.New("dispatch queue closed")

// Scheduler is what coordinator-owned components use to run work later on the queue.
// Cancel functions are idempotent.
type Scheduler interface {
	Post(fn func())
	After(d time.Duration, fn func()) (cancel func())
	Every(d time.Duration, fn func()) (cancel func())
}

type Queue struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

func NewQueue(buffer int) *Queue {
	if buffer <= 0 {
		buffer = 64
	}
	return &Queue{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run drains tasks until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) {
	defer q.once.Do(func() { close(q.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-q.tasks:
			q.exec(fn)
		}
	}
}

func (q *Queue) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("dispatch: task panicked: %v", r)
		}
	}()
	fn()
}

// Post enqueues fn. Work posted after the queue stopped is dropped.
func (q *Queue) Post(fn func()) {
	select {
	case <-q.done:
	case q.tasks <- fn:
	}
}

// Do runs fn on the queue and waits for it to finish. If ctx ends before fn starts, fn is
// skipped and ctx.Err() is returned; once fn has started Do waits for it and returns nil.
func (q *Queue) Do(ctx context.Context, fn func()) error {
	var (
		mu        sync.Mutex
		started   bool
		cancelled bool
	)
	finished := make(chan struct{})
	task := func() {
		mu.Lock()
		if cancelled {
			mu.Unlock()
			return
		}
		started = true
		mu.Unlock()
		defer close(finished)
		fn()
	}
	select {
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.tasks <- task:
	}
	select {
	case <-finished:
		return nil
	case <-q.done:
	case <-ctx.Done():
	}

	mu.Lock()
	if !started {
		cancelled = true
		mu.Unlock()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrClosed
	}
	mu.Unlock()
	<-finished
	return nil
}

func (q *Queue) After(d time.Duration, fn func()) func() {
	var mu sync.Mutex
	cancelled := false
	t := time.AfterFunc(d, func() {
		q.Post(func() {
			mu.Lock()
			c := cancelled
			mu.Unlock()
			if !c {
				fn()
			}
		})
	})
	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		t.Stop()
	}
}

func (q *Queue) Every(d time.Duration, fn func()) func() {
	stop := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	cancelled := false
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-q.done:
				return
			case <-ticker.C:
				q.Post(func() {
					mu.Lock()
					c := cancelled
					mu.Unlock()
					if !c {
						fn()
					}
				})
			}
		}
	}()
	return func() {
		once.Do(func() {
			mu.Lock()
			cancelled = true
			mu.Unlock()
			close(stop)
		})
	}
}
