package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/reporting"
)

const SessionCookieName = "starcade_session"

type errorResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

func writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"cause":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeErrorResponse(ctx context.Context, w http.ResponseWriter, cause string, statusCode int) {
	writeJSONResponse(ctx, w, statusCode, errorResponse{Success: false, Cause: cause})
}

func sessionTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// clientKey identifies the caller for login lockout purposes
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// achievements in the layout the frontend has always read
type achievementsResponse struct {
	FallingItems struct {
		SumGames  int `json:"sumGames"`
		HighScore int `json:"HighScore"`
	} `json:"fallingItems"`
	TicTacToe struct {
		SumGames int `json:"sumGames"`
		Wins     int `json:"wins"`
	} `json:"tic_tac_toe"`
}

func makeAchievementsResponse(record domain.AchievementRecord) achievementsResponse {
	var resp achievementsResponse
	resp.FallingItems.SumGames = record.FallingStars.GamesPlayed
	resp.FallingItems.HighScore = record.FallingStars.HighScore
	resp.TicTacToe.SumGames = record.TicTacToe.GamesPlayed
	resp.TicTacToe.Wins = record.TicTacToe.Wins
	return resp
}
