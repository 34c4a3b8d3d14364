package userrepository_test

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/kmoholt/starcade/internal/adapters/database"
	"github.com/kmoholt/starcade/internal/adapters/userrepository"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/domaintest"
)

func newPostgres(t *testing.T, db *sqlx.DB, schemaSuffix string) *userrepository.Postgres {
	t.Helper()
	require.NotEmpty(t, schemaSuffix, "schemaSuffix must not be empty")
	schema := fmt.Sprintf("users_repo_test_%s", schemaSuffix)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schema)))

	migrator := database.NewDatabaseMigrator(db, logger)

	err := migrator.Migrate(t.Context(), schema)
	require.NoError(t, err)

	return userrepository.NewPostgres(db, schema)
}

func TestPostgresUserRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping db tests in short mode.")
	}
	t.Parallel()

	db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
	require.NoError(t, err)

	t.Run("create, get and duplicate", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		repo := newPostgres(t, db, "create")

		user := domaintest.NewUserBuilder("alice").
			WithEmail("alice@x.com").
			WithPassword("Passw0rd").
			WithCreatedAt(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)).
			Build()

		require.NoError(t, repo.CreateUser(ctx, user))

		stored, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, user.Username, stored.Username)
		require.Equal(t, user.Email, stored.Email)
		require.Equal(t, user.Password, stored.Password)
		require.Equal(t, domain.AchievementRecord{}, stored.Achievements)
		require.True(t, user.CreatedAt.Equal(stored.CreatedAt))

		err = repo.CreateUser(ctx, user)
		require.ErrorIs(t, err, domain.ErrDuplicateUser)

		_, err = repo.GetUser(ctx, "bob")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("store updated achievements", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		repo := newPostgres(t, db, "store")

		user := domaintest.NewUserBuilder("alice").Build()
		require.NoError(t, repo.CreateUser(ctx, user))

		user.Achievements, err = user.Achievements.WithFallingStarsGame(7)
		require.NoError(t, err)
		require.NoError(t, repo.StoreUser(ctx, user))

		stored, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, 7, stored.Achievements.FallingStars.HighScore)
		require.Equal(t, 1, stored.Achievements.FallingStars.GamesPlayed)

		err = repo.StoreUser(ctx, domaintest.NewUserBuilder("ghost").Build())
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("all users ordered by creation time", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		repo := newPostgres(t, db, "allusers")

		base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
		for i, username := range []string{"carol", "alice", "bob"} {
			user := domaintest.NewUserBuilder(username).WithCreatedAt(base.Add(time.Duration(i) * time.Minute)).Build()
			require.NoError(t, repo.CreateUser(ctx, user))
		}

		users, err := repo.AllUsers(ctx)
		require.NoError(t, err)

		usernames := make([]string, len(users))
		for i, user := range users {
			usernames[i] = user.Username
		}
		require.Equal(t, []string{"carol", "alice", "bob"}, usernames)
	})
}
