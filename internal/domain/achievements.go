package domain

import "fmt"

// FallingStarsStats tracks a user's Falling Stars results. GamesPlayed only
// ever increases and HighScore is an all-time max.
type FallingStarsStats struct {
	GamesPlayed int
	HighScore   int
}

// TicTacToeStats tracks a user's Tic-Tac-Toe results. Wins never exceeds
// GamesPlayed.
type TicTacToeStats struct {
	GamesPlayed int
	Wins        int
}

type AchievementRecord struct {
	FallingStars FallingStarsStats
	TicTacToe    TicTacToeStats
}

// TicTacToeOutcome is the terminal result of a tic-tac-toe game relative to
// the tracked player (the player holding the X mark).
type TicTacToeOutcome string

const (
	OutcomeWin  TicTacToeOutcome = "win"
	OutcomeLoss TicTacToeOutcome = "loss"
	OutcomeTie  TicTacToeOutcome = "tie"
)

// WithFallingStarsGame returns the record updated with one completed Falling
// Stars game. Counting is not deduplicated: calling this twice for the same
// game double-counts, so callers must report each game exactly once.
func (r AchievementRecord) WithFallingStarsGame(finalScore int) (AchievementRecord, error) {
	if finalScore < 0 {
		return r, fmt.Errorf("final score must be non-negative, got %d", finalScore)
	}

	r.FallingStars.GamesPlayed++
	if finalScore > r.FallingStars.HighScore {
		r.FallingStars.HighScore = finalScore
	}
	return r, nil
}

// WithTicTacToeGame returns the record updated with one completed
// Tic-Tac-Toe game. Only a Win increments the win counter.
func (r AchievementRecord) WithTicTacToeGame(outcome TicTacToeOutcome) (AchievementRecord, error) {
	switch outcome {
	case OutcomeWin:
		r.TicTacToe.Wins++
	case OutcomeLoss, OutcomeTie:
	default:
		return r, fmt.Errorf("unknown tic-tac-toe outcome: %q", outcome)
	}

	r.TicTacToe.GamesPlayed++
	return r, nil
}
