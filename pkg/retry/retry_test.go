package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo(t *testing.T) {
	errBoom := errors.New("boom")
	tests := []struct {
		name      string
		failures  int
		transient bool
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{name: "first try", failures: 0, transient: true, attempts: 3, wantCalls: 1},
		{name: "recovers", failures: 2, transient: true, attempts: 3, wantCalls: 3},
		{name: "exhausted", failures: 5, transient: true, attempts: 3, wantCalls: 3, wantErr: errBoom},
		{name: "permanent", failures: 5, transient: false, attempts: 3, wantCalls: 1, wantErr: errBoom},
		{name: "zero attempts runs once", failures: 5, transient: true, attempts: 0, wantCalls: 1, wantErr: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), Policy{Attempts: tt.attempts, Delay: time.Millisecond}, func() error {
				calls++
				if calls <= tt.failures {
					if tt.transient {
						return Transient(errBoom)
					}
					return errBoom
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("Do() error = %v, want nil", err)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Do() error = %v, want %v", err, tt.wantErr)
				}
				if IsTransient(err) {
					t.Errorf("Do() returned an error still marked transient")
				}
			}
		})
	}
}

func TestDo_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 5, Delay: time.Hour}, func() error {
		calls++
		cancel()
		return Transient(errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) != nil")
	}
	base := errors.New("x")
	err := Transient(base)
	if !IsTransient(err) || !errors.Is(err, base) {
		t.Errorf("Transient(x) = %v, want transient wrapping x", err)
	}
	if IsTransient(base) {
		t.Error("IsTransient(plain) = true")
	}
}
