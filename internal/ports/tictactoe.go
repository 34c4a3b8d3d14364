package ports

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kmoholt/starcade/internal/app"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/games/tictactoe"
	"github.com/kmoholt/starcade/internal/logging"
	"github.com/kmoholt/starcade/internal/reporting"
)

type ticTacToeResponse struct {
	Success       bool     `json:"success"`
	Board         []string `json:"board"`
	CurrentPlayer string   `json:"currentPlayer"`
	Active        bool     `json:"active"`
	Winner        string   `json:"winner"`
	Tie           bool     `json:"tie"`
}

func makeTicTacToeResponse(snapshot tictactoe.Snapshot) ticTacToeResponse {
	board := make([]string, len(snapshot.Board))
	for i, mark := range snapshot.Board {
		board[i] = string(mark)
	}
	return ticTacToeResponse{
		Success:       true,
		Board:         board,
		CurrentPlayer: string(snapshot.CurrentPlayer),
		Active:        snapshot.Active,
		Winner:        string(snapshot.Winner),
		Tie:           snapshot.Tie,
	}
}

func MakeStartTicTacToeHandler(
	arcade *app.Arcade,
	getCurrentUser app.GetCurrentUser,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newGameEndpointMiddleware("tic_tac_toe_start", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, token, ok := requireCurrentUser(ctx, w, r, getCurrentUser)
		if !ok {
			return
		}
		ctx = logging.AddMetaToContext(ctx, slog.String("username", user.Username))
		ctx = reporting.SetUserIDInContext(ctx, user.Username)

		snapshot := arcade.StartTicTacToe(ctx, token, user.Username)
		writeJSONResponse(ctx, w, http.StatusOK, makeTicTacToeResponse(snapshot))
	}

	return middleware(handler)
}

func MakePlaceMarkHandler(
	arcade *app.Arcade,
	getCurrentUser app.GetCurrentUser,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newGameEndpointMiddleware("tic_tac_toe_move", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, token, ok := requireCurrentUser(ctx, w, r, getCurrentUser)
		if !ok {
			return
		}
		ctx = reporting.SetUserIDInContext(ctx, user.Username)

		var request struct {
			Cell *int `json:"cell"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Cell == nil {
			writeErrorResponse(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}

		snapshot, err := arcade.PlaceTicTacToeMark(ctx, token, *request.Cell)
		if errors.Is(err, domain.ErrNoActiveGame) {
			writeErrorResponse(ctx, w, "no active game", http.StatusNotFound)
			return
		}
		if err != nil {
			writeErrorResponse(ctx, w, "invalid cell", http.StatusBadRequest)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, makeTicTacToeResponse(snapshot))
	}

	return middleware(handler)
}

func MakeTicTacToeStateHandler(
	arcade *app.Arcade,
	getCurrentUser app.GetCurrentUser,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := newGameEndpointMiddleware("tic_tac_toe_state", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, token, ok := requireCurrentUser(ctx, w, r, getCurrentUser)
		if !ok {
			return
		}
		ctx = reporting.SetUserIDInContext(ctx, user.Username)

		snapshot, err := arcade.TicTacToeState(ctx, token)
		if errors.Is(err, domain.ErrNoActiveGame) {
			writeErrorResponse(ctx, w, "no active game", http.StatusNotFound)
			return
		}
		if err != nil {
			reporting.Report(ctx, err)
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, makeTicTacToeResponse(snapshot))
	}

	return middleware(handler)
}
