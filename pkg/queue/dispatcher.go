package queue

import (
	"fmt"
	"sync"
	"time"

	applogger "CoinSight/pkg/logger"
	"CoinSight/pkg/ratelimit"
)

// Operation is a unit of work executed by a dispatcher worker.
type Operation func() (interface{}, error)

// Callback receives the operation result exactly once. ok is false when the
// operation failed (or was rate limited out of capacity).
type Callback func(result interface{}, ok bool)

type task struct {
	op Operation
	cb Callback
}

// Dispatcher is a bounded work queue drained by a fixed pool of long-lived
// workers. Each task optionally runs through a rate-limiting invoker and its
// callback fires exactly once. Workers survive panicking callbacks.
type Dispatcher struct {
	name    string
	invoker *ratelimit.Invoker
	l       *applogger.Logger

	tasks   chan task
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	retries int
	backoff time.Duration
	depth   func(int) // queue depth hook (optional)
}

// Option configures Dispatcher.
type Option func(*Dispatcher)

// WithInvoker routes every task through the given rate-limiting invoker.
func WithInvoker(iv *ratelimit.Invoker) Option {
	return func(d *Dispatcher) { d.invoker = iv }
}

// WithRetry sets retry policy for tasks executed through the invoker.
func WithRetry(maxRetries int, initialBackoff time.Duration) Option {
	return func(d *Dispatcher) {
		d.retries = maxRetries
		d.backoff = initialBackoff
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(d *Dispatcher) { d.l = l }
}

// WithDepthHook is called with the queue depth after each enqueue.
func WithDepthHook(fn func(int)) Option {
	return func(d *Dispatcher) { d.depth = fn }
}

// NewDispatcher creates a dispatcher and starts its workers.
func NewDispatcher(name string, workers, queueSize int, opts ...Option) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		name:    name,
		tasks:   make(chan task, queueSize),
		stop:    make(chan struct{}),
		retries: 3,
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue adds a task without blocking. It fails when the queue is full or
// the dispatcher has been shut down. cb may be nil.
func (d *Dispatcher) Enqueue(op Operation, cb Callback) error {
	// The send must happen under the same lock that orders it against
	// Shutdown's close(d.tasks), or a concurrent shutdown panics the sender.
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("%s dispatcher: shut down", d.name)
	}

	select {
	case d.tasks <- task{op: op, cb: cb}:
		if d.depth != nil {
			d.depth(len(d.tasks))
		}
		return nil
	default:
		return fmt.Errorf("%s dispatcher: queue full", d.name)
	}
}

// RunSync enqueues op and blocks until its callback fires or timeout elapses.
// On timeout it returns (nil, false); the queued task is not cancelled and a
// late result is silently discarded.
func (d *Dispatcher) RunSync(op Operation, timeout time.Duration) (interface{}, bool) {
	type outcome struct {
		v  interface{}
		ok bool
	}
	// Buffered so the worker's callback never blocks on an abandoned wait.
	done := make(chan outcome, 1)
	err := d.Enqueue(op, func(v interface{}, ok bool) {
		done <- outcome{v: v, ok: ok}
	})
	if err != nil {
		return nil, false
	}

	select {
	case out := <-done:
		return out.v, out.ok
	case <-time.After(timeout):
		if d.l != nil {
			d.l.Warn("synchronous wait timed out", applogger.String("queue", d.name))
		}
		return nil, false
	}
}

// Shutdown stops the dispatcher. With wait=true pending tasks are drained and
// workers joined; with wait=false pending work is abandoned. Enqueue fails
// afterwards either way.
func (d *Dispatcher) Shutdown(wait bool) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if wait {
		close(d.tasks)
	}
	d.mu.Unlock()

	if wait {
		d.wg.Wait()
		return
	}
	close(d.stop)
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stop:
			return
		case t, open := <-d.tasks:
			if !open {
				return
			}
			d.run(t)
		}
	}
}

func (d *Dispatcher) run(t task) {
	defer func() {
		if r := recover(); r != nil && d.l != nil {
			d.l.Error("task panicked", applogger.String("queue", d.name), applogger.Any("panic", r))
		}
	}()

	var (
		result interface{}
		ok     bool
	)
	if d.invoker != nil {
		result, ok = d.invoker.Execute(ratelimit.Operation(t.op), d.retries, d.backoff)
	} else {
		v, err := t.op()
		if err != nil {
			if d.l != nil {
				d.l.Warn("task failed", applogger.String("queue", d.name), applogger.Error(err))
			}
			result, ok = nil, false
		} else {
			result, ok = v, true
		}
	}
	if t.cb != nil {
		t.cb(result, ok)
	}
}
