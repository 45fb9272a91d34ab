package ddrouter

import (
	"context"
	"sync"
)

type futureState int

const (
	futurePending futureState = iota
	futureCompleted
	futureCanceled
)

// Future is a single-value, single-completion handle on an asynchronous
// request. It completes at most once, either with a value or an error, and
// never changes afterward. Methods are safe for concurrent use.
type Future[T any] struct {
	mu          sync.Mutex
	state       futureState
	value       T
	err         error
	done        chan struct{}
	stop        context.CancelFunc
	scheduler   Scheduler
	subscribers []func(T, error)
}

// Go runs fn on a background goroutine and returns its Future. fn receives
// a context that is cancelled by Future.Cancel.
func Go[T any](ctx context.Context, scheduler Scheduler, fn func(ctx context.Context) (T, error)) *Future[T] {
	if scheduler == nil {
		scheduler = GoScheduler
	}
	ctx, stop := context.WithCancel(ctx)
	f := &Future[T]{
		done:      make(chan struct{}),
		stop:      stop,
		scheduler: scheduler,
	}
	go func() {
		defer stop()
		value, err := fn(ctx)
		f.complete(value, err)
	}()
	return f
}

func (f *Future[T]) complete(value T, err error) {
	f.mu.Lock()
	if f.state != futurePending {
		f.mu.Unlock()
		return
	}
	f.state = futureCompleted
	f.value, f.err = value, err
	subscribers := f.subscribers
	f.subscribers = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range subscribers {
		f.deliver(fn, value, err)
	}
}

func (f *Future[T]) deliver(fn func(T, error), value T, err error) {
	f.scheduler.Schedule(func() { fn(value, err) })
}

// Cancel aborts a pending request: the underlying exchange is cancelled and
// no subscriber is ever called. It reports whether the future was pending;
// cancelling a completed future is a no-op.
func (f *Future[T]) Cancel() bool {
	f.mu.Lock()
	if f.state != futurePending {
		f.mu.Unlock()
		return false
	}
	f.state = futureCanceled
	f.err = ErrCanceled
	f.subscribers = nil
	close(f.done)
	f.mu.Unlock()

	f.stop()
	return true
}

// Done returns a channel closed when the future completes or is cancelled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Subscribe registers fn to receive the completion. fn runs once on the
// future's Scheduler, never on the goroutine performing the request. If the
// future already completed fn is scheduled immediately; after Cancel it is
// never called.
func (f *Future[T]) Subscribe(fn func(T, error)) {
	f.mu.Lock()
	switch f.state {
	case futurePending:
		f.subscribers = append(f.subscribers, fn)
		f.mu.Unlock()
	case futureCompleted:
		value, err := f.value, f.err
		f.mu.Unlock()
		f.deliver(fn, value, err)
	default:
		f.mu.Unlock()
	}
}

// Result blocks until the future is done and returns its outcome. After
// Cancel the error is ErrCanceled.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Await is like Result but gives up when ctx is done, returning ctx.Err().
// Giving up does not cancel the future.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Scheduler runs completion callbacks on a consumer execution context.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// Schedule calls f(fn).
func (f SchedulerFunc) Schedule(fn func()) {
	f(fn)
}

// GoScheduler runs every callback on its own goroutine.
var GoScheduler Scheduler = SchedulerFunc(func(fn func()) { go fn() })

// SerialQueue runs callbacks one at a time, in submission order, on a
// single dedicated goroutine.
type SerialQueue struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool
	exited chan struct{}
}

// NewSerialQueue starts a queue. Call Close to stop it.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		wake:   make(chan struct{}, 1),
		exited: make(chan struct{}),
	}
	go q.loop()
	return q
}

// Schedule enqueues fn without blocking. Callbacks scheduled after Close are dropped.
func (q *SerialQueue) Schedule(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops the queue after the already enqueued callbacks have run.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.exited
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.exited
}

func (q *SerialQueue) loop() {
	defer close(q.exited)
	for range q.wake {
		for {
			q.mu.Lock()
			if len(q.tasks) == 0 {
				closed := q.closed
				q.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := q.tasks[0]
			q.tasks = q.tasks[1:]
			q.mu.Unlock()

			fn()
		}
	}
}
