package app_test

import (
	"testing"
	"time"

	"github.com/kmoholt/starcade/internal/adapters/sessionstore"
	"github.com/kmoholt/starcade/internal/adapters/userrepository"
	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/stretchr/testify/require"
)

func newSessionStore(t *testing.T) sessionstore.Store {
	t.Helper()
	sessions, stop := sessionstore.NewTTLStore(time.Hour, nil)
	t.Cleanup(stop)
	return sessions
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	nowFunc := func() time.Time { return now }

	t.Run("creates user with zero achievements and a session", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repo := userrepository.NewMemory()
		sessions := newSessionStore(t)
		signUp := app.BuildSignUp(repo, sessions, nowFunc)

		token, user, err := signUp(ctx, "alice", "alice@x.com", "Passw0rd")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		require.Equal(t, "alice", user.Username)
		require.Equal(t, "alice@x.com", user.Email)
		require.Equal(t, domain.AchievementRecord{}, user.Achievements)
		require.True(t, now.Equal(user.CreatedAt))

		username, ok := sessions.Get(token)
		require.True(t, ok)
		require.Equal(t, "alice", username)

		stored, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, domain.AchievementRecord{}, stored.Achievements)
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repo := userrepository.NewMemory()
		sessions := newSessionStore(t)
		signUp := app.BuildSignUp(repo, sessions, nowFunc)

		_, _, err := signUp(ctx, "alice", "alice@x.com", "Passw0rd")
		require.NoError(t, err)

		_, _, err = signUp(ctx, "alice", "other@x.com", "other")
		require.ErrorIs(t, err, domain.ErrDuplicateUser)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repo := userrepository.NewMemory()
		sessions := newSessionStore(t)
		signUp := app.BuildSignUp(repo, sessions, nowFunc)

		for _, args := range [][3]string{
			{"", "alice@x.com", "Passw0rd"},
			{"alice", "", "Passw0rd"},
			{"alice", "alice@x.com", ""},
		} {
			_, _, err := signUp(ctx, args[0], args[1], args[2])
			require.ErrorIs(t, err, domain.ErrMissingFields)
		}
	})
}
