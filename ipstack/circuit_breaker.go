package ipstack

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"
)

type circuitBreakerCallback func(context.Context) (*http.Response, error)

const (
	circuitBreakerStateClosed uint32 = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

// circuitBreaker protects ipstack from a flood of requests when it
// is down. Errors returned by a callback are counted as failures,
// ErrCircuitBreakerIgnore is not counted at all. Response is returned
// as is, even on failure: callback decides what is a failure.
type circuitBreaker struct {
	state     uint32
	stateLock chan struct{}

	halfOpenTimer        *time.Timer
	failuresCleanupTimer *time.Timer

	halfOpenAttempts uint32
	failuresCount    uint32

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

func (c *circuitBreaker) Do(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	switch atomic.LoadUint32(&c.state) {
	case circuitBreakerStateClosed:
		return c.doClosed(ctx, callback)
	case circuitBreakerStateHalfOpened:
		return c.doHalfOpened(ctx, callback)
	}

	return nil, ErrCircuitBreakerOpened
}

func (c *circuitBreaker) doClosed(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	resp, err := callback(ctx)

	if errors.Is(err, ErrCircuitBreakerIgnore) {
		return resp, err
	}

	if !c.lock(ctx) {
		return resp, ctx.Err()
	}
	defer c.unlock()

	if err == nil {
		c.switchState(circuitBreakerStateClosed)

		return resp, nil
	}

	c.failuresCount++

	if c.state == circuitBreakerStateClosed && c.failuresCount > c.openThreshold {
		c.switchState(circuitBreakerStateOpened)
	}

	return resp, err
}

func (c *circuitBreaker) doHalfOpened(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	if !atomic.CompareAndSwapUint32(&c.halfOpenAttempts, 0, 1) {
		return nil, ErrCircuitBreakerOpened
	}

	resp, err := callback(ctx)

	if errors.Is(err, ErrCircuitBreakerIgnore) {
		atomic.StoreUint32(&c.halfOpenAttempts, 0)

		return resp, err
	}

	if !c.lock(ctx) {
		return resp, ctx.Err()
	}
	defer c.unlock()

	if c.state != circuitBreakerStateHalfOpened {
		return resp, err
	}

	if err != nil {
		c.switchState(circuitBreakerStateOpened)
	} else {
		c.switchState(circuitBreakerStateClosed)
	}

	return resp, err
}

func (c *circuitBreaker) lock(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case c.stateLock <- struct{}{}:
		return true
	}
}

func (c *circuitBreaker) unlock() {
	<-c.stateLock
}

func (c *circuitBreaker) switchState(state uint32) {
	switch state {
	case circuitBreakerStateClosed:
		c.stopTimer(&c.halfOpenTimer)
		c.ensureTimer(&c.failuresCleanupTimer, c.resetFailuresTimeout, c.resetFailures)
	case circuitBreakerStateHalfOpened:
		c.stopTimer(&c.failuresCleanupTimer)
		c.stopTimer(&c.halfOpenTimer)
	case circuitBreakerStateOpened:
		c.stopTimer(&c.failuresCleanupTimer)
		c.ensureTimer(&c.halfOpenTimer, c.halfOpenTimeout, c.tryHalfOpen)
	}

	c.failuresCount = 0

	atomic.StoreUint32(&c.halfOpenAttempts, 0)
	atomic.StoreUint32(&c.state, state)
}

func (c *circuitBreaker) resetFailures() {
	c.stateLock <- struct{}{}
	defer c.unlock()

	c.stopTimer(&c.failuresCleanupTimer)

	if c.state == circuitBreakerStateClosed {
		c.switchState(circuitBreakerStateClosed)
	}
}

func (c *circuitBreaker) tryHalfOpen() {
	c.stateLock <- struct{}{}
	defer c.unlock()

	if c.state == circuitBreakerStateOpened {
		c.switchState(circuitBreakerStateHalfOpened)
	}
}

func (c *circuitBreaker) stopTimer(timerRef **time.Timer) {
	if timer := *timerRef; timer != nil {
		timer.Stop()
		*timerRef = nil
	}
}

func (c *circuitBreaker) ensureTimer(timerRef **time.Timer, timeout time.Duration, callback func()) {
	if *timerRef == nil {
		*timerRef = time.AfterFunc(timeout, callback)
	}
}

func newCircuitBreaker(openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	cb := &circuitBreaker{
		stateLock:            make(chan struct{}, 1),
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}

	cb.switchState(circuitBreakerStateClosed)

	return cb
}
