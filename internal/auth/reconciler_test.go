package auth_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cronoplan/cronoplan-api/internal/auth"
	"github.com/cronoplan/cronoplan-api/internal/profile"
)

func noSleep() (auth.ReconcilerOption, *[]time.Duration) {
	delays := &[]time.Duration{}
	opt := auth.WithReconcilerSleeper(func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	})
	return opt, delays
}

func notFoundErr() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound)
}

func TestReconciler_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	identityID := uuid.NewString()

	t.Run("returns existing row on first read", func(t *testing.T) {
		store := &MockProfileStore{}
		existing := &profile.Profile{Email: "test@example.com"}
		store.On("GetByID", ctx, identityID).Return(existing, nil).Once()

		sleeper, delays := noSleep()
		r := auth.NewReconciler(store, sleeper)

		record := r.GetOrCreate(ctx, identityID, "test@example.com", auth.ProfileHints{})

		assert.Same(t, existing, record)
		assert.Empty(t, *delays)
		store.AssertExpectations(t)
	})

	t.Run("creates row from hints when missing", func(t *testing.T) {
		store := &MockProfileStore{}
		store.On("GetByID", ctx, identityID).Return(nil, notFoundErr()).Once()
		store.On("Create", ctx, mock.AnythingOfType("*profile.Profile")).
			Run(func(args mock.Arguments) {
				record := args.Get(1).(*profile.Profile)
				assert.Equal(t, identityID, record.ID.String())
				assert.Equal(t, "test@example.com", record.Email)
				assert.Equal(t, "Test User", record.FullName)
				assert.Equal(t, "+14155552671", record.Phone)
			}).
			Return(&profile.Profile{Email: "test@example.com"}, nil).Once()

		sleeper, delays := noSleep()
		r := auth.NewReconciler(store, sleeper)

		record := r.GetOrCreate(ctx, identityID, "test@example.com", auth.ProfileHints{
			FullName: "Test User",
			Phone:    "+14155552671",
		})

		require.NotNil(t, record)
		assert.False(t, record.Synthesized)
		assert.Empty(t, *delays)
		store.AssertExpectations(t)
	})

	t.Run("concurrent insert winner is authoritative", func(t *testing.T) {
		store := &MockProfileStore{}
		winner := &profile.Profile{Email: "winner@example.com"}

		store.On("GetByID", ctx, identityID).Return(nil, notFoundErr()).Once()
		store.On("Create", ctx, mock.Anything).
			Return(nil, goerrors.New("duplicate key", goerrors.CategoryConflict)).Once()
		store.On("GetByID", ctx, identityID).Return(winner, nil).Once()

		sleeper, delays := noSleep()
		r := auth.NewReconciler(store, sleeper)

		record := r.GetOrCreate(ctx, identityID, "test@example.com", auth.ProfileHints{})

		assert.Same(t, winner, record)
		assert.Empty(t, *delays)
		store.AssertExpectations(t)
	})

	t.Run("retries with doubling backoff then synthesizes", func(t *testing.T) {
		store := &MockProfileStore{}
		store.On("GetByID", ctx, identityID).
			Return(nil, goerrors.New("storage offline", goerrors.CategoryInternal)).Times(4)

		sleeper, delays := noSleep()
		r := auth.NewReconciler(store, sleeper,
			auth.WithReconcilerAttempts(4),
			auth.WithReconcilerBaseDelay(250*time.Millisecond),
		)

		record := r.GetOrCreate(ctx, identityID, "test@example.com", auth.ProfileHints{
			FullName: "Test User",
		})

		require.NotNil(t, record)
		assert.True(t, record.Synthesized)
		assert.Equal(t, identityID, record.ID.String())
		assert.Equal(t, "test@example.com", record.Email)
		assert.Equal(t, "Test User", record.FullName)
		require.NotNil(t, record.CreatedAt)

		assert.Equal(t, []time.Duration{
			250 * time.Millisecond,
			500 * time.Millisecond,
			1000 * time.Millisecond,
		}, *delays)
		store.AssertExpectations(t)
	})

	t.Run("single attempt never sleeps", func(t *testing.T) {
		store := &MockProfileStore{}
		store.On("GetByID", ctx, identityID).
			Return(nil, goerrors.New("storage offline", goerrors.CategoryInternal)).Once()

		sleeper, delays := noSleep()
		r := auth.NewReconciler(store, sleeper, auth.WithReconcilerAttempts(1))

		record := r.GetOrCreate(ctx, identityID, "test@example.com", auth.ProfileHints{})

		assert.True(t, record.Synthesized)
		assert.Empty(t, *delays)
		store.AssertExpectations(t)
	})

	t.Run("stops waiting when context is cancelled", func(t *testing.T) {
		store := &MockProfileStore{}
		store.On("GetByID", mock.Anything, identityID).
			Return(nil, goerrors.New("storage offline", goerrors.CategoryInternal)).Once()

		r := auth.NewReconciler(store,
			auth.WithReconcilerSleeper(func(ctx context.Context, d time.Duration) error {
				return context.Canceled
			}),
		)

		record := r.GetOrCreate(ctx, identityID, "test@example.com", auth.ProfileHints{})

		assert.True(t, record.Synthesized)
		store.AssertExpectations(t)
	})

	t.Run("failed create retries and eventually succeeds", func(t *testing.T) {
		store := &MockProfileStore{}
		created := &profile.Profile{Email: "test@example.com"}

		store.On("GetByID", ctx, identityID).Return(nil, notFoundErr()).Once()
		store.On("Create", ctx, mock.Anything).
			Return(nil, goerrors.New("storage offline", goerrors.CategoryInternal)).Once()
		store.On("GetByID", ctx, identityID).Return(nil, notFoundErr()).Twice()
		store.On("Create", ctx, mock.Anything).Return(created, nil).Once()

		sleeper, delays := noSleep()
		r := auth.NewReconciler(store, sleeper)

		record := r.GetOrCreate(ctx, identityID, "test@example.com", auth.ProfileHints{})

		assert.Same(t, created, record)
		assert.Len(t, *delays, 1)
		store.AssertExpectations(t)
	})

	t.Run("synthesized profile keeps unparseable identity id out of the uuid", func(t *testing.T) {
		store := &MockProfileStore{}
		store.On("GetByID", ctx, "not-a-uuid").
			Return(nil, goerrors.New("storage offline", goerrors.CategoryInternal)).Once()

		sleeper, _ := noSleep()
		r := auth.NewReconciler(store, sleeper, auth.WithReconcilerAttempts(1))

		record := r.GetOrCreate(ctx, "not-a-uuid", "test@example.com", auth.ProfileHints{})

		assert.True(t, record.Synthesized)
		assert.Equal(t, uuid.Nil, record.ID)
		store.AssertExpectations(t)
	})
}
