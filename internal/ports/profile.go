package ports

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/logging"
	"github.com/kmoholt/starcade/internal/reporting"
)

// requireCurrentUser resolves the caller's session, writing the error
// response itself when there is no usable session.
func requireCurrentUser(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	getCurrentUser app.GetCurrentUser,
) (domain.User, string, bool) {
	token := sessionTokenFromRequest(r)

	user, err := getCurrentUser(ctx, token)
	if errors.Is(err, domain.ErrNoCurrentUser) {
		writeErrorResponse(ctx, w, "not logged in", http.StatusUnauthorized)
		return domain.User{}, "", false
	}
	if err != nil {
		// NOTE: GetCurrentUser implementations handle their own error reporting
		writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
		return domain.User{}, "", false
	}

	return user, token, true
}

func MakeProfileHandler(
	getCurrentUser app.GetCurrentUser,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := ComposeMiddlewares(
		buildMetricsMiddleware(),
		logging.NewRequestLoggerMiddleware(rootLogger, SessionCookieName),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("profile"),
		BuildCORSMiddleware(allowedOrigins),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, _, ok := requireCurrentUser(ctx, w, r, getCurrentUser)
		if !ok {
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("username", user.Username))
		ctx = reporting.SetUserIDInContext(ctx, user.Username)

		writeJSONResponse(ctx, w, http.StatusOK, authResponse{
			Success:      true,
			Username:     user.Username,
			Email:        user.Email,
			Achievements: makeAchievementsResponse(user.Achievements),
		})
	}

	return middleware(handler)
}
