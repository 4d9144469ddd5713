// Package retry re-runs operations that fail with transient errors, such as
// a database that is still starting when the server comes up.
//
//	err := retry.Do(ctx, retry.Policy{Attempts: 5, Delay: 200 * time.Millisecond}, func() error {
//	    if err := pool.Ping(ctx); err != nil {
//	        return retry.Transient(err)
//	    }
//	    return nil
//	})
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy bounds how often and how patiently an operation is retried.
// The delay doubles after every failed attempt.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Startup is the policy used when dialling backing services.
var Startup = Policy{Attempts: 4, Delay: 250 * time.Millisecond}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. Nil stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with [Transient].
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Do runs fn until it succeeds, returns an error not marked transient, or
// the policy's attempts run out. The last error is returned unwrapped from
// its transient marker; a cancelled ctx returns ctx.Err().
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var t *transientError
		if !errors.As(err, &t) {
			return err
		}
		err = t.err
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
