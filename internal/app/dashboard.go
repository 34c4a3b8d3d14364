package app

import (
	"context"
	"fmt"

	"github.com/kmoholt/starcade/internal/domain"
)

type allUsersRepository interface {
	AllUsers(ctx context.Context) ([]domain.User, error)
}

type Leader struct {
	Username string
	Score    int
}

// TopFallingStars finds the user with the highest falling stars high score.
// Ties go to the last matching user in iteration order.
func TopFallingStars(users []domain.User) (Leader, bool) {
	if len(users) == 0 {
		return Leader{}, false
	}

	leader := Leader{}
	for _, user := range users {
		if user.Achievements.FallingStars.HighScore >= leader.Score {
			leader = Leader{
				Username: user.Username,
				Score:    user.Achievements.FallingStars.HighScore,
			}
		}
	}
	return leader, true
}

// TopTicTacToe finds the user with the most tic-tac-toe wins.
// Ties go to the last matching user in iteration order.
func TopTicTacToe(users []domain.User) (Leader, bool) {
	if len(users) == 0 {
		return Leader{}, false
	}

	leader := Leader{}
	for _, user := range users {
		if user.Achievements.TicTacToe.Wins >= leader.Score {
			leader = Leader{
				Username: user.Username,
				Score:    user.Achievements.TicTacToe.Wins,
			}
		}
	}
	return leader, true
}

type Dashboard struct {
	FallingStarsLeader *Leader
	TicTacToeLeader    *Leader
}

type GetDashboard func(ctx context.Context) (Dashboard, error)

func BuildGetDashboard(repo allUsersRepository) GetDashboard {
	return func(ctx context.Context) (Dashboard, error) {
		users, err := repo.AllUsers(ctx)
		if err != nil {
			return Dashboard{}, fmt.Errorf("failed to list users: %w", err)
		}

		dashboard := Dashboard{}
		if leader, ok := TopFallingStars(users); ok {
			dashboard.FallingStarsLeader = &leader
		}
		if leader, ok := TopTicTacToe(users); ok {
			dashboard.TicTacToeLeader = &leader
		}
		return dashboard, nil
	}
}
