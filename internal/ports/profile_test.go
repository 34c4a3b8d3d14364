package ports_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kmoholt/starcade/internal/adapters/sessionstore"
	"github.com/kmoholt/starcade/internal/adapters/userrepository"
	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/domaintest"
	"github.com/kmoholt/starcade/internal/ports"
	"github.com/stretchr/testify/require"
)

func TestMakeProfileHandler(t *testing.T) {
	t.Parallel()

	allowedOrigins, err := ports.NewDomainSuffixes("starcade.app")
	require.NoError(t, err)

	newStack := func(t *testing.T) (*userrepository.Memory, sessionstore.Store, http.HandlerFunc) {
		t.Helper()

		repo := userrepository.NewMemory()
		sessions, stopSessions := sessionstore.NewTTLStore(time.Hour, nil)
		t.Cleanup(stopSessions)

		handler := ports.MakeProfileHandler(
			app.BuildGetCurrentUser(sessions, repo),
			allowedOrigins,
			testLogger,
			noopMiddleware,
		)
		return repo, sessions, handler
	}

	t.Run("returns the achievements in the legacy layout", func(t *testing.T) {
		t.Parallel()

		repo, sessions, handler := newStack(t)
		user := domaintest.NewUserBuilder("alice").
			WithAchievements(domain.AchievementRecord{
				FallingStars: domain.FallingStarsStats{GamesPlayed: 4, HighScore: 7},
				TicTacToe:    domain.TicTacToeStats{GamesPlayed: 3, Wins: 2},
			}).
			Build()
		require.NoError(t, repo.CreateUser(t.Context(), user))
		token := sessions.Create("alice")

		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		req.AddCookie(&http.Cookie{Name: ports.SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		handler(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{
			"success": true,
			"username": "alice",
			"email": "alice@example.com",
			"achievements": {
				"fallingItems": {"sumGames": 4, "HighScore": 7},
				"tic_tac_toe": {"sumGames": 3, "wins": 2}
			}
		}`, w.Body.String())
	})

	t.Run("no session", func(t *testing.T) {
		t.Parallel()

		_, _, handler := newStack(t)

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/v1/profile", nil))

		require.Equal(t, http.StatusUnauthorized, w.Code)

		var resp struct {
			Success bool   `json:"success"`
			Cause   string `json:"cause"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.False(t, resp.Success)
		require.Equal(t, "not logged in", resp.Cause)
	})

	t.Run("session for missing user", func(t *testing.T) {
		t.Parallel()

		_, sessions, handler := newStack(t)
		token := sessions.Create("ghost")

		req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
		req.AddCookie(&http.Cookie{Name: ports.SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		handler(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
