package ratelimit

import (
	"math/rand"
	"sync"
	"time"

	applogger "CoinSight/pkg/logger"
)

// Operation is a single upstream call.
type Operation func() (interface{}, error)

// Invoker serializes calls to one upstream: bucket admission, minimum spacing
// between invocation starts, and exponential-backoff retry with jitter.
type Invoker struct {
	name        string
	bucket      *Bucket
	minInterval time.Duration
	waitTimeout time.Duration
	l           *applogger.Logger

	mu        sync.Mutex
	lastStart time.Time

	sleep func(time.Duration)
	// metrics hooks (optional)
	capacityWarn func()
	attemptWarn  func(attempt int)
}

// InvokerOption configures Invoker.
type InvokerOption func(*Invoker)

// WithMinInterval enforces a minimum spacing between two invocation starts.
func WithMinInterval(d time.Duration) InvokerOption {
	return func(iv *Invoker) { iv.minInterval = d }
}

// WithWaitTimeout bounds how long Execute blocks waiting for a token.
func WithWaitTimeout(d time.Duration) InvokerOption {
	return func(iv *Invoker) { iv.waitTimeout = d }
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) InvokerOption {
	return func(iv *Invoker) { iv.l = l }
}

// WithCapacityHook is called when token acquisition times out.
func WithCapacityHook(fn func()) InvokerOption {
	return func(iv *Invoker) { iv.capacityWarn = fn }
}

// WithAttemptHook is called once per failed attempt.
func WithAttemptHook(fn func(attempt int)) InvokerOption {
	return func(iv *Invoker) { iv.attemptWarn = fn }
}

// NewInvoker creates an invoker for the named upstream.
func NewInvoker(name string, bucket *Bucket, opts ...InvokerOption) *Invoker {
	iv := &Invoker{
		name:        name,
		bucket:      bucket,
		waitTimeout: 60 * time.Second,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Execute runs op under rate limiting. It blocks for a token first; a token
// timeout fails immediately without retry (no tokens will appear faster by
// retrying). Operation errors are retried up to maxRetries times with
// exponential backoff plus up to 10% uniform jitter. Failure is reported as
// ok=false, never panics.
func (iv *Invoker) Execute(op Operation, maxRetries int, initialBackoff time.Duration) (interface{}, bool) {
	if !iv.bucket.WaitAndConsume(1, iv.waitTimeout) {
		if iv.capacityWarn != nil {
			iv.capacityWarn()
		}
		if iv.l != nil {
			iv.l.Warn("no capacity, giving up", applogger.String("api", iv.name))
		}
		return nil, false
	}

	iv.pace()

	backoff := initialBackoff
	for attempt := 0; ; attempt++ {
		result, err := op()
		if err == nil {
			return result, true
		}
		if iv.attemptWarn != nil {
			iv.attemptWarn(attempt + 1)
		}
		if attempt >= maxRetries {
			if iv.l != nil {
				iv.l.Warn("request failed, retries exhausted",
					applogger.String("api", iv.name),
					applogger.Int("retries", maxRetries),
					applogger.Error(err),
				)
			}
			return nil, false
		}
		jitter := time.Duration(rand.Int63n(int64(backoff)/10 + 1))
		if iv.l != nil {
			iv.l.Warn("request failed, retrying",
				applogger.String("api", iv.name),
				applogger.Int("attempt", attempt+1),
				applogger.Duration("backoff_ms", backoff+jitter),
				applogger.Error(err),
			)
		}
		iv.sleep(backoff + jitter)
		backoff *= 2
	}
}

// pace sleeps until minInterval has passed since the previous invocation start.
func (iv *Invoker) pace() {
	if iv.minInterval <= 0 {
		return
	}
	iv.mu.Lock()
	defer iv.mu.Unlock()
	if !iv.lastStart.IsZero() {
		if since := time.Since(iv.lastStart); since < iv.minInterval {
			iv.sleep(iv.minInterval - since)
		}
	}
	iv.lastStart = time.Now()
}
