package ports

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/games/fallingstars"
	"github.com/kmoholt/starcade/internal/logging"
	"github.com/kmoholt/starcade/internal/ratelimiting"
	"github.com/kmoholt/starcade/internal/reporting"
)

// Move endpoints see a burst per keypress, so the buckets are generous
func newGameRateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	sessionLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(60),
		ratelimiting.BurstSize(120),
	)
	sessionRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		// NOTE: Rate limiting based on user controlled value
		sessionLimiter,
		ratelimiting.SessionKeyFunc(SessionCookieName),
	)
	return NewRateLimitMiddleware(sessionRateLimiter, onRateLimitExceeded)
}

type itemResponse struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type fallingStarsResponse struct {
	Success   bool           `json:"success"`
	Score     int            `json:"score"`
	LivesLeft int            `json:"livesLeft"`
	Running   bool           `json:"running"`
	CatcherX  int            `json:"catcherX"`
	Items     []itemResponse `json:"items"`
}

func makeFallingStarsResponse(snapshot fallingstars.Snapshot) fallingStarsResponse {
	items := make([]itemResponse, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, itemResponse{X: item.X, Y: item.Y})
	}
	return fallingStarsResponse{
		Success:   true,
		Score:     snapshot.Score,
		LivesLeft: snapshot.LivesLeft,
		Running:   snapshot.Running,
		CatcherX:  snapshot.CatcherX,
		Items:     items,
	}
}

func newGameEndpointMiddleware(
	endpoint string,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) func(http.HandlerFunc) http.HandlerFunc {
	return ComposeMiddlewares(
		buildMetricsMiddleware(),
		logging.NewRequestLoggerMiddleware(rootLogger, SessionCookieName),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware(endpoint),
		BuildCORSMiddleware(allowedOrigins),
		newGameRateLimitMiddleware(),
	)
}

func MakeStartFallingStarsHandler(
	arcade *app.Arcade,
	getCurrentUser app.GetCurrentUser,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newGameEndpointMiddleware("falling_stars_start", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, token, ok := requireCurrentUser(ctx, w, r, getCurrentUser)
		if !ok {
			return
		}
		ctx = logging.AddMetaToContext(ctx, slog.String("username", user.Username))
		ctx = reporting.SetUserIDInContext(ctx, user.Username)

		var request struct {
			Difficulty string `json:"difficulty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeErrorResponse(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}

		difficulty, err := fallingstars.ParseDifficulty(request.Difficulty)
		if err != nil {
			writeErrorResponse(ctx, w, "invalid difficulty", http.StatusBadRequest)
			return
		}

		snapshot := arcade.StartFallingStars(ctx, token, user.Username, difficulty)
		writeJSONResponse(ctx, w, http.StatusOK, makeFallingStarsResponse(snapshot))
	}

	return middleware(handler)
}

func MakeMoveCatcherHandler(
	arcade *app.Arcade,
	getCurrentUser app.GetCurrentUser,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newGameEndpointMiddleware("falling_stars_move", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, token, ok := requireCurrentUser(ctx, w, r, getCurrentUser)
		if !ok {
			return
		}
		ctx = reporting.SetUserIDInContext(ctx, user.Username)

		var request struct {
			Direction string `json:"direction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeErrorResponse(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}

		direction, err := app.ParseDirection(request.Direction)
		if err != nil {
			writeErrorResponse(ctx, w, "invalid direction", http.StatusBadRequest)
			return
		}

		snapshot, err := arcade.MoveCatcher(ctx, token, direction)
		if errors.Is(err, domain.ErrNoActiveGame) {
			writeErrorResponse(ctx, w, "no active game", http.StatusNotFound)
			return
		}
		if err != nil {
			reporting.Report(ctx, err)
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, makeFallingStarsResponse(snapshot))
	}

	return middleware(handler)
}

func MakeFallingStarsStateHandler(
	arcade *app.Arcade,
	getCurrentUser app.GetCurrentUser,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newGameEndpointMiddleware("falling_stars_state", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, token, ok := requireCurrentUser(ctx, w, r, getCurrentUser)
		if !ok {
			return
		}
		ctx = reporting.SetUserIDInContext(ctx, user.Username)

		snapshot, err := arcade.FallingStarsState(ctx, token)
		if errors.Is(err, domain.ErrNoActiveGame) {
			writeErrorResponse(ctx, w, "no active game", http.StatusNotFound)
			return
		}
		if err != nil {
			reporting.Report(ctx, err)
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, makeFallingStarsResponse(snapshot))
	}

	return middleware(handler)
}
