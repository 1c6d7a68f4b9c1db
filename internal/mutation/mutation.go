// Package mutation tracks the in-flight state of a single user-triggered
// write so a screen can disable resubmission while a request is pending.
package mutation

import (
	"context"
	"sync"

	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
)

// Status of a tracked mutation
type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Tracker runs at most one mutation at a time. A second Run while the first is
// pending is rejected with ErrInFlight instead of being sent twice.
type Tracker struct {
	mu     sync.Mutex
	status Status
	err    error
}

func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err is the error of the last failed run.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Busy reports whether a submit control should be disabled.
func (t *Tracker) Busy() bool {
	return t.Status() == Pending
}

func (t *Tracker) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	if t.status == Pending {
		t.mu.Unlock()
		return apperrors.NewInFlight()
	}
	t.status = Pending
	t.err = nil
	t.mu.Unlock()

	err := fn(ctx)

	t.mu.Lock()
	if err != nil {
		t.status = Failed
		t.err = err
	} else {
		t.status = Succeeded
	}
	t.mu.Unlock()
	return err
}

// Reset returns a settled tracker to Idle. It is a no-op while pending.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != Pending {
		t.status = Idle
		t.err = nil
	}
}
