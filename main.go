package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kmoholt/starcade/internal/adapters/database"
	"github.com/kmoholt/starcade/internal/adapters/lockout"
	"github.com/kmoholt/starcade/internal/adapters/sessionstore"
	"github.com/kmoholt/starcade/internal/adapters/userrepository"
	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/config"
	"github.com/kmoholt/starcade/internal/logging"
	"github.com/kmoholt/starcade/internal/ports"
	"github.com/kmoholt/starcade/internal/reporting"
	"github.com/kmoholt/starcade/internal/scheduling"
	"github.com/kmoholt/starcade/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "golang.org/x/crypto/x509roots/fallback"
)

// TODO: Put in config
const PROD_DOMAIN_SUFFIX = "starcade.app"
const STAGING_DOMAIN_SUFFIX = "starcade.pages.dev"

const SESSION_TTL = 12 * time.Hour
const LOCKOUT_DURATION = 5 * time.Minute
const GAME_ENGINE_TTL = 1 * time.Hour

func main() {
	ctx := context.Background()

	instanceID := uuid.New().String()
	logHandler := logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil))
	logger := slog.New(logHandler).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	otelShutdown, err := telemetry.SetupOTelSDK(ctx, "starcade")
	if err != nil {
		fail("Failed to initialize telemetry", "error", err.Error())
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			logger.Error("Failed to shut down telemetry", "error", err.Error())
		}
	}()

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	userRepo, err := newUserRepository(config, logger)
	if err != nil {
		fail("Failed to initialize user repository", "error", err.Error())
	}
	logger.Info("Initialized user repository")

	sessions, stopSessions := sessionstore.NewTTLStore(SESSION_TTL, nil)
	defer stopSessions()

	lockouts, stopLockouts := lockout.NewTTLStore(LOCKOUT_DURATION)
	defer stopLockouts()

	arcadeCtx := logging.AddToContext(ctx, logger.With("component", "arcade"))
	arcade, stopArcade := app.NewArcade(
		arcadeCtx,
		scheduling.NewScheduler(),
		app.BuildRecordFallingStarsResult(userRepo),
		app.BuildRecordTicTacToeResult(userRepo),
		GAME_ENGINE_TTL,
	)
	defer stopArcade()

	allowedOrigins, err := ports.NewDomainSuffixes(PROD_DOMAIN_SUFFIX, STAGING_DOMAIN_SUFFIX)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	signUp := app.BuildSignUp(userRepo, sessions, time.Now)
	logIn := app.BuildLogIn(userRepo, sessions, lockouts)
	getCurrentUser := app.BuildGetCurrentUser(sessions, userRepo)
	getDashboard := app.BuildGetDashboard(userRepo)

	http.HandleFunc(
		"OPTIONS /v1/auth/signup",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"POST /v1/auth/signup",
		ports.MakeSignUpHandler(
			signUp,
			SESSION_TTL,
			allowedOrigins,
			logger.With("port", "signup"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/auth/login",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"POST /v1/auth/login",
		ports.MakeLogInHandler(
			logIn,
			SESSION_TTL,
			allowedOrigins,
			logger.With("port", "login"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/profile",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"GET /v1/profile",
		ports.MakeProfileHandler(
			getCurrentUser,
			allowedOrigins,
			logger.With("port", "profile"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/dashboard",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"GET /v1/dashboard",
		ports.MakeDashboardHandler(
			getDashboard,
			allowedOrigins,
			logger.With("port", "dashboard"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/games/falling-stars",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"POST /v1/games/falling-stars",
		ports.MakeStartFallingStarsHandler(
			arcade,
			getCurrentUser,
			allowedOrigins,
			logger.With("port", "fallingstars"),
			sentryMiddleware,
		),
	)
	http.HandleFunc(
		"GET /v1/games/falling-stars",
		ports.MakeFallingStarsStateHandler(
			arcade,
			getCurrentUser,
			allowedOrigins,
			logger.With("port", "fallingstars"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/games/falling-stars/move",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"POST /v1/games/falling-stars/move",
		ports.MakeMoveCatcherHandler(
			arcade,
			getCurrentUser,
			allowedOrigins,
			logger.With("port", "fallingstars"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/games/tic-tac-toe",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"POST /v1/games/tic-tac-toe",
		ports.MakeStartTicTacToeHandler(
			arcade,
			getCurrentUser,
			allowedOrigins,
			logger.With("port", "tictactoe"),
			sentryMiddleware,
		),
	)
	http.HandleFunc(
		"GET /v1/games/tic-tac-toe",
		ports.MakeTicTacToeStateHandler(
			arcade,
			getCurrentUser,
			allowedOrigins,
			logger.With("port", "tictactoe"),
			sentryMiddleware,
		),
	)

	http.HandleFunc(
		"OPTIONS /v1/games/tic-tac-toe/move",
		ports.BuildCORSHandler(allowedOrigins),
	)
	http.HandleFunc(
		"POST /v1/games/tic-tac-toe/move",
		ports.MakePlaceMarkHandler(
			arcade,
			getCurrentUser,
			allowedOrigins,
			logger.With("port", "tictactoe"),
			sentryMiddleware,
		),
	)

	logger.Info("Init complete")
	err = http.ListenAndServe(
		fmt.Sprintf(":%s", config.Port()),
		otelhttp.NewHandler(http.DefaultServeMux, "starcade"),
	)
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}

// newUserRepository connects to Postgres and runs migrations. Development
// environments without a database get the in-memory store instead.
func newUserRepository(conf config.Config, logger *slog.Logger) (userrepository.UserRepository, error) {
	if conf.IsDevelopment() && conf.DBHost() == "" {
		logger.Info("No database configured, using in-memory user repository")
		return userrepository.NewMemory(), nil
	}

	db, err := database.NewPostgresDatabaseFromConfig(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schemaName := database.GetSchemaName(!conf.IsProduction())

	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(context.Background(), schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return userrepository.NewPostgres(db, schemaName), nil
}
