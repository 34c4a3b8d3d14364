package userrepository

import (
	"encoding/json"
	"fmt"

	"github.com/kmoholt/starcade/internal/domain"
)

// The achievement document keeps the field names of the original browser
// storage layout so existing exports stay readable.
type achievementsDocument struct {
	FallingItems fallingItemsDocument `json:"fallingItems"`
	TicTacToe    ticTacToeDocument    `json:"tic_tac_toe"`
}

type fallingItemsDocument struct {
	SumGames  int `json:"sumGames"`
	HighScore int `json:"HighScore"`
}

type ticTacToeDocument struct {
	SumGames int `json:"sumGames"`
	Wins     int `json:"wins"`
}

func marshalAchievements(record domain.AchievementRecord) ([]byte, error) {
	document := achievementsDocument{
		FallingItems: fallingItemsDocument{
			SumGames:  record.FallingStars.GamesPlayed,
			HighScore: record.FallingStars.HighScore,
		},
		TicTacToe: ticTacToeDocument{
			SumGames: record.TicTacToe.GamesPlayed,
			Wins:     record.TicTacToe.Wins,
		},
	}

	data, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal achievements: %w", err)
	}
	return data, nil
}

func unmarshalAchievements(data []byte) (domain.AchievementRecord, error) {
	var document achievementsDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return domain.AchievementRecord{}, fmt.Errorf("failed to unmarshal achievements: %w", err)
	}

	return domain.AchievementRecord{
		FallingStars: domain.FallingStarsStats{
			GamesPlayed: document.FallingItems.SumGames,
			HighScore:   document.FallingItems.HighScore,
		},
		TicTacToe: domain.TicTacToeStats{
			GamesPlayed: document.TicTacToe.SumGames,
			Wins:        document.TicTacToe.Wins,
		},
	}, nil
}
