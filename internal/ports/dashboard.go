package ports

import (
	"log/slog"
	"net/http"

	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/logging"
	"github.com/kmoholt/starcade/internal/reporting"
)

type leaderResponse struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type dashboardResponse struct {
	Success      bool            `json:"success"`
	FallingStars *leaderResponse `json:"fallingStars"`
	TicTacToe    *leaderResponse `json:"ticTacToe"`
}

func MakeDashboardHandler(
	getDashboard app.GetDashboard,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := ComposeMiddlewares(
		buildMetricsMiddleware(),
		logging.NewRequestLoggerMiddleware(rootLogger, SessionCookieName),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("dashboard"),
		BuildCORSMiddleware(allowedOrigins),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		dashboard, err := getDashboard(ctx)
		if err != nil {
			reporting.Report(ctx, err)
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		response := dashboardResponse{Success: true}
		if dashboard.FallingStarsLeader != nil {
			response.FallingStars = &leaderResponse{
				Username: dashboard.FallingStarsLeader.Username,
				Score:    dashboard.FallingStarsLeader.Score,
			}
		}
		if dashboard.TicTacToeLeader != nil {
			response.TicTacToe = &leaderResponse{
				Username: dashboard.TicTacToeLeader.Username,
				Score:    dashboard.TicTacToeLeader.Score,
			}
		}

		writeJSONResponse(ctx, w, http.StatusOK, response)
	}

	return middleware(handler)
}
