package app_test

import (
	"testing"

	"github.com/kmoholt/starcade/internal/adapters/userrepository"
	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func userWithStats(username string, highScore, wins int) domain.User {
	return domaintest.NewUserBuilder(username).
		WithAchievements(domain.AchievementRecord{
			FallingStars: domain.FallingStarsStats{GamesPlayed: 1, HighScore: highScore},
			TicTacToe:    domain.TicTacToeStats{GamesPlayed: wins, Wins: wins},
		}).
		Build()
}

func TestTopFallingStars(t *testing.T) {
	t.Parallel()

	t.Run("no users", func(t *testing.T) {
		t.Parallel()
		_, ok := app.TopFallingStars(nil)
		require.False(t, ok)
	})

	t.Run("highest score wins", func(t *testing.T) {
		t.Parallel()
		leader, ok := app.TopFallingStars([]domain.User{
			userWithStats("alice", 5, 0),
			userWithStats("bob", 12, 0),
			userWithStats("carol", 3, 0),
		})
		require.True(t, ok)
		require.Equal(t, app.Leader{Username: "bob", Score: 12}, leader)
	})

	t.Run("ties go to the last user seen", func(t *testing.T) {
		t.Parallel()
		leader, ok := app.TopFallingStars([]domain.User{
			userWithStats("alice", 10, 0),
			userWithStats("bob", 10, 0),
		})
		require.True(t, ok)
		require.Equal(t, app.Leader{Username: "bob", Score: 10}, leader)
	})

	t.Run("users without games still produce a leader", func(t *testing.T) {
		t.Parallel()
		leader, ok := app.TopFallingStars([]domain.User{
			domaintest.NewUserBuilder("alice").Build(),
		})
		require.True(t, ok)
		require.Equal(t, app.Leader{Username: "alice", Score: 0}, leader)
	})
}

func TestTopTicTacToe(t *testing.T) {
	t.Parallel()

	t.Run("no users", func(t *testing.T) {
		t.Parallel()
		_, ok := app.TopTicTacToe(nil)
		require.False(t, ok)
	})

	t.Run("most wins", func(t *testing.T) {
		t.Parallel()
		leader, ok := app.TopTicTacToe([]domain.User{
			userWithStats("alice", 0, 4),
			userWithStats("bob", 0, 2),
		})
		require.True(t, ok)
		require.Equal(t, app.Leader{Username: "alice", Score: 4}, leader)
	})

	t.Run("ties go to the last user seen", func(t *testing.T) {
		t.Parallel()
		leader, ok := app.TopTicTacToe([]domain.User{
			userWithStats("alice", 0, 10),
			userWithStats("bob", 0, 10),
		})
		require.True(t, ok)
		require.Equal(t, app.Leader{Username: "bob", Score: 10}, leader)
	})
}

func TestGetDashboard(t *testing.T) {
	t.Parallel()

	t.Run("empty store has no leaders", func(t *testing.T) {
		t.Parallel()

		getDashboard := app.BuildGetDashboard(userrepository.NewMemory())

		dashboard, err := getDashboard(t.Context())
		require.NoError(t, err)
		require.Nil(t, dashboard.FallingStarsLeader)
		require.Nil(t, dashboard.TicTacToeLeader)
	})

	t.Run("leaders per game", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repo := userrepository.NewMemory()
		require.NoError(t, repo.CreateUser(ctx, userWithStats("alice", 12, 1)))
		require.NoError(t, repo.CreateUser(ctx, userWithStats("bob", 5, 8)))

		getDashboard := app.BuildGetDashboard(repo)

		dashboard, err := getDashboard(ctx)
		require.NoError(t, err)
		require.Equal(t, &app.Leader{Username: "alice", Score: 12}, dashboard.FallingStarsLeader)
		require.Equal(t, &app.Leader{Username: "bob", Score: 8}, dashboard.TicTacToeLeader)
	})
}
