package app_test

import (
	"testing"
	"time"

	"github.com/kmoholt/starcade/internal/adapters/lockout"
	"github.com/kmoholt/starcade/internal/adapters/sessionstore"
	"github.com/kmoholt/starcade/internal/adapters/userrepository"
	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/domaintest"
	"github.com/stretchr/testify/require"
)

// mapLockoutStore is a lockout store without expiry, so tests can expire
// lockouts by hand instead of sleeping.
type mapLockoutStore struct {
	locked map[string]bool
}

func (s *mapLockoutStore) Lock(key string)          { s.locked[key] = true }
func (s *mapLockoutStore) IsLocked(key string) bool { return s.locked[key] }

func newLogIn(t *testing.T, repo *userrepository.Memory) (app.LogIn, sessionstore.Store) {
	t.Helper()

	sessions, stopSessions := sessionstore.NewTTLStore(time.Hour, nil)
	t.Cleanup(stopSessions)

	lockouts, stopLockouts := lockout.NewTTLStore(5 * time.Minute)
	t.Cleanup(stopLockouts)

	return app.BuildLogIn(repo, sessions, lockouts), sessions
}

func TestLogIn(t *testing.T) {
	t.Parallel()

	newRepoWithAlice := func(t *testing.T) *userrepository.Memory {
		t.Helper()
		repo := userrepository.NewMemory()
		user := domaintest.NewUserBuilder("alice").WithPassword("Passw0rd").Build()
		require.NoError(t, repo.CreateUser(t.Context(), user))
		return repo
	}

	t.Run("correct credentials", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		logIn, sessions := newLogIn(t, newRepoWithAlice(t))

		token, user, err := logIn(ctx, "client1", "alice", "Passw0rd")
		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)

		username, ok := sessions.Get(token)
		require.True(t, ok)
		require.Equal(t, "alice", username)
	})

	t.Run("wrong password carries the attempt count", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		logIn, _ := newLogIn(t, newRepoWithAlice(t))

		_, _, err := logIn(ctx, "client1", "alice", "wrong")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		invalidCredentials := &app.InvalidCredentialsError{}
		require.ErrorAs(t, err, &invalidCredentials)
		require.Equal(t, 1, invalidCredentials.Attempts)

		_, _, err = logIn(ctx, "client1", "alice", "wrong")
		require.ErrorAs(t, err, &invalidCredentials)
		require.Equal(t, 2, invalidCredentials.Attempts)
	})

	t.Run("unknown username counts as a failed attempt", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		logIn, _ := newLogIn(t, newRepoWithAlice(t))

		_, _, err := logIn(ctx, "client1", "ghost", "whatever")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		require.NotErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("third failure locks the client for correct credentials too", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		logIn, _ := newLogIn(t, newRepoWithAlice(t))

		for i := 0; i < 3; i++ {
			_, _, err := logIn(ctx, "client1", "alice", "wrong")
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		}

		_, _, err := logIn(ctx, "client1", "alice", "Passw0rd")
		require.ErrorIs(t, err, domain.ErrLoginBlocked)

		// Other clients are unaffected
		_, _, err = logIn(ctx, "client2", "alice", "Passw0rd")
		require.NoError(t, err)
	})

	t.Run("success resets the failure count", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		logIn, _ := newLogIn(t, newRepoWithAlice(t))

		for i := 0; i < 2; i++ {
			_, _, err := logIn(ctx, "client1", "alice", "wrong")
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		}

		_, _, err := logIn(ctx, "client1", "alice", "Passw0rd")
		require.NoError(t, err)

		// The count starts over, so a single failure is attempt 1 again
		_, _, err = logIn(ctx, "client1", "alice", "wrong")
		invalidCredentials := &app.InvalidCredentialsError{}
		require.ErrorAs(t, err, &invalidCredentials)
		require.Equal(t, 1, invalidCredentials.Attempts)
	})

	t.Run("failure count survives the lockout", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repo := newRepoWithAlice(t)

		sessions, stopSessions := sessionstore.NewTTLStore(time.Hour, nil)
		t.Cleanup(stopSessions)
		lockouts := &mapLockoutStore{locked: map[string]bool{}}
		logIn := app.BuildLogIn(repo, sessions, lockouts)

		for i := 0; i < 3; i++ {
			_, _, err := logIn(ctx, "client1", "alice", "wrong")
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		}
		require.True(t, lockouts.IsLocked("client1"))

		// Expire the lockout; the counter is still at 3, so a single further
		// failure is attempt 4 and locks the client again right away.
		delete(lockouts.locked, "client1")

		_, _, err := logIn(ctx, "client1", "alice", "wrong")
		invalidCredentials := &app.InvalidCredentialsError{}
		require.ErrorAs(t, err, &invalidCredentials)
		require.Equal(t, 4, invalidCredentials.Attempts)
		require.True(t, lockouts.IsLocked("client1"))

		// A successful login after another expiry does clear the count
		delete(lockouts.locked, "client1")
		_, _, err = logIn(ctx, "client1", "alice", "Passw0rd")
		require.NoError(t, err)

		_, _, err = logIn(ctx, "client1", "alice", "wrong")
		require.ErrorAs(t, err, &invalidCredentials)
		require.Equal(t, 1, invalidCredentials.Attempts)
	})

	t.Run("lockout expiry unblocks the client", func(t *testing.T) {
		t.Parallel()
		if testing.Short() {
			t.Skip("skipping timing sensitive test in short mode")
		}
		ctx := t.Context()

		repo := newRepoWithAlice(t)

		sessions, stopSessions := sessionstore.NewTTLStore(time.Hour, nil)
		t.Cleanup(stopSessions)
		lockouts, stopLockouts := lockout.NewTTLStore(50 * time.Millisecond)
		t.Cleanup(stopLockouts)
		logIn := app.BuildLogIn(repo, sessions, lockouts)

		for i := 0; i < 3; i++ {
			_, _, err := logIn(ctx, "client1", "alice", "wrong")
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		}

		_, _, err := logIn(ctx, "client1", "alice", "Passw0rd")
		require.ErrorIs(t, err, domain.ErrLoginBlocked)

		time.Sleep(100 * time.Millisecond)

		_, _, err = logIn(ctx, "client1", "alice", "Passw0rd")
		require.NoError(t, err)
	})
}
