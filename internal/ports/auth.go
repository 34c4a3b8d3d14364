package ports

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/logging"
	"github.com/kmoholt/starcade/internal/ratelimiting"
	"github.com/kmoholt/starcade/internal/reporting"
)

type authResponse struct {
	Success      bool                 `json:"success"`
	Username     string               `json:"username"`
	Email        string               `json:"email"`
	Achievements achievementsResponse `json:"achievements"`
}

func onRateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"success":false,"cause":"rate limit exceeded"}`))
}

func newAuthRateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(1),
		ratelimiting.BurstSize(30),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)
	return NewRateLimitMiddleware(ipRateLimiter, onRateLimitExceeded)
}

func MakeSignUpHandler(
	signUp app.SignUp,
	sessionTTL time.Duration,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := ComposeMiddlewares(
		buildMetricsMiddleware(),
		logging.NewRequestLoggerMiddleware(rootLogger, SessionCookieName),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("sign_up"),
		BuildCORSMiddleware(allowedOrigins),
		newAuthRateLimitMiddleware(),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var request struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeErrorResponse(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("username", request.Username))
		ctx = reporting.SetUserIDInContext(ctx, request.Username)

		token, user, err := signUp(ctx, request.Username, request.Email, request.Password)
		if errors.Is(err, domain.ErrDuplicateUser) {
			writeErrorResponse(ctx, w, "username already taken", http.StatusConflict)
			return
		} else if errors.Is(err, domain.ErrMissingFields) {
			writeErrorResponse(ctx, w, "all fields are required", http.StatusBadRequest)
			return
		}
		if err != nil {
			reporting.Report(ctx, err)
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		setSessionCookie(w, token, sessionTTL)
		writeJSONResponse(ctx, w, http.StatusCreated, authResponse{
			Success:      true,
			Username:     user.Username,
			Email:        user.Email,
			Achievements: makeAchievementsResponse(user.Achievements),
		})
	}

	return middleware(handler)
}

func MakeLogInHandler(
	logIn app.LogIn,
	sessionTTL time.Duration,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := ComposeMiddlewares(
		buildMetricsMiddleware(),
		logging.NewRequestLoggerMiddleware(rootLogger, SessionCookieName),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("log_in"),
		BuildCORSMiddleware(allowedOrigins),
		newAuthRateLimitMiddleware(),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var request struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeErrorResponse(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("username", request.Username))
		ctx = reporting.SetUserIDInContext(ctx, request.Username)

		token, user, err := logIn(ctx, clientKey(r), request.Username, request.Password)
		if errors.Is(err, domain.ErrLoginBlocked) {
			writeErrorResponse(ctx, w, "too many failed attempts, try again later", http.StatusForbidden)
			return
		}
		invalidCredentials := &app.InvalidCredentialsError{}
		if errors.As(err, &invalidCredentials) {
			writeErrorResponse(ctx, w, invalidCredentials.Error(), http.StatusUnauthorized)
			return
		}
		if err != nil {
			reporting.Report(ctx, err)
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		setSessionCookie(w, token, sessionTTL)
		writeJSONResponse(ctx, w, http.StatusOK, authResponse{
			Success:      true,
			Username:     user.Username,
			Email:        user.Email,
			Achievements: makeAchievementsResponse(user.Achievements),
		})
	}

	return middleware(handler)
}
