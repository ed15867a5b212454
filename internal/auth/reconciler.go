package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/cronoplan/cronoplan-api/internal/profile"
)

const (
	defaultReconcileAttempts  = 4
	defaultReconcileBaseDelay = 250 * time.Millisecond
)

// ProfileHints carries the optional profile metadata known at authentication
// time (registration payload or OAuth provider claims). Used to create the
// row when it is missing, and to synthesize one when storage is unavailable.
type ProfileHints struct {
	FullName  string
	Phone     string
	AvatarURL string
}

// Reconciler bridges the gap between "identity authenticated upstream" and
// "profile row readable": the row may trail the identity because an external
// trigger materializes it. Reads are retried with doubling backoff up to a
// bounded attempt count; a missing row is created from hints; exhausted
// retries degrade to a synthesized in-memory profile so the auth flow still
// completes. Reconciliation never fails.
type Reconciler struct {
	profiles ProfileStore
	attempts int
	delay    time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	logger   Logger
}

// ReconcilerOption customizes reconciler behavior.
type ReconcilerOption func(*Reconciler)

// WithReconcilerAttempts bounds the retry loop.
func WithReconcilerAttempts(n int) ReconcilerOption {
	return func(r *Reconciler) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithReconcilerBaseDelay sets the first backoff delay; each retry doubles it.
// Tests run with a no-op sleeper instead of lowering this.
func WithReconcilerBaseDelay(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d > 0 {
			r.delay = d
		}
	}
}

// WithReconcilerClock injects a custom clock (useful for tests).
func WithReconcilerClock(clock func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if clock != nil {
			r.now = clock
		}
	}
}

// WithReconcilerSleeper overrides how backoff waits are performed.
func WithReconcilerSleeper(sleep func(ctx context.Context, d time.Duration) error) ReconcilerOption {
	return func(r *Reconciler) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// WithReconcilerLogger overrides the fallback logger.
func WithReconcilerLogger(logger Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReconciler returns a Reconciler backed by the given store.
func NewReconciler(profiles ProfileStore, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		profiles: profiles,
		attempts: defaultReconcileAttempts,
		delay:    defaultReconcileBaseDelay,
		now:      time.Now,
		sleep:    sleepContext,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// GetOrCreate resolves the profile for an authenticated identity. The result
// is never nil: after exhausting retries it returns a synthesized profile
// built from the hints, flagged Synthesized, trading consistency for
// availability. A later read picks up the real row once it exists.
func (r *Reconciler) GetOrCreate(ctx context.Context, identityID, email string, hints ProfileHints) *profile.Profile {
	delay := r.delay

	for attempt := 1; attempt <= r.attempts; attempt++ {
		found, err := r.profiles.GetByID(ctx, identityID)
		if err == nil {
			return found
		}

		if goerrors.IsNotFound(err) {
			record := r.profileFromHints(identityID, email, hints)
			created, cerr := r.profiles.Create(ctx, record)
			if cerr == nil {
				return created
			}

			// A concurrent reconcile may have won the insert; its row is
			// authoritative.
			if existing, rerr := r.profiles.GetByID(ctx, identityID); rerr == nil {
				return existing
			}

			r.logger.Warn("reconcile create failed", "identity", identityID, "attempt", attempt, "error", cerr)
		} else {
			r.logger.Warn("reconcile read failed", "identity", identityID, "attempt", attempt, "error", err)
		}

		if attempt == r.attempts {
			break
		}

		if err := r.sleep(ctx, delay); err != nil {
			break
		}
		delay *= 2
	}

	r.logger.Error("reconcile exhausted, synthesizing profile", "identity", identityID, "attempts", r.attempts)

	synthesized := r.profileFromHints(identityID, email, hints)
	synthesized.Synthesized = true
	return synthesized
}

func (r *Reconciler) profileFromHints(identityID, email string, hints ProfileHints) *profile.Profile {
	record := &profile.Profile{
		Email:     email,
		FullName:  hints.FullName,
		Phone:     hints.Phone,
		AvatarURL: hints.AvatarURL,
	}

	if id, err := uuid.Parse(identityID); err == nil {
		record.ID = id
	}

	now := r.now()
	record.CreatedAt = &now

	return record
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
