package app

import (
	"context"
	"fmt"

	"github.com/kmoholt/starcade/internal/domain"
)

type recordGameUserRepository interface {
	GetUser(ctx context.Context, username string) (domain.User, error)
	StoreUser(ctx context.Context, user domain.User) error
}

type RecordFallingStarsResult func(ctx context.Context, username string, finalScore int) (domain.User, error)

func BuildRecordFallingStarsResult(repo recordGameUserRepository) RecordFallingStarsResult {
	return func(ctx context.Context, username string, finalScore int) (domain.User, error) {
		user, err := repo.GetUser(ctx, username)
		if err != nil {
			return domain.User{}, fmt.Errorf("failed to get user: %w", err)
		}

		updated, err := user.Achievements.WithFallingStarsGame(finalScore)
		if err != nil {
			return domain.User{}, fmt.Errorf("failed to update achievements: %w", err)
		}
		user.Achievements = updated

		if err := repo.StoreUser(ctx, user); err != nil {
			return domain.User{}, fmt.Errorf("failed to store user: %w", err)
		}

		return user, nil
	}
}

type RecordTicTacToeResult func(ctx context.Context, username string, outcome domain.TicTacToeOutcome) (domain.User, error)

func BuildRecordTicTacToeResult(repo recordGameUserRepository) RecordTicTacToeResult {
	return func(ctx context.Context, username string, outcome domain.TicTacToeOutcome) (domain.User, error) {
		user, err := repo.GetUser(ctx, username)
		if err != nil {
			return domain.User{}, fmt.Errorf("failed to get user: %w", err)
		}

		updated, err := user.Achievements.WithTicTacToeGame(outcome)
		if err != nil {
			return domain.User{}, fmt.Errorf("failed to update achievements: %w", err)
		}
		user.Achievements = updated

		if err := repo.StoreUser(ctx, user); err != nil {
			return domain.User{}, fmt.Errorf("failed to store user: %w", err)
		}

		return user, nil
	}
}
