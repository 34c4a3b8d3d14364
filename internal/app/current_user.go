package app

import (
	"context"
	"fmt"

	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/reporting"
)

type sessionReader interface {
	Get(token string) (string, bool)
}

type currentUserRepository interface {
	GetUser(ctx context.Context, username string) (domain.User, error)
}

type GetCurrentUser func(ctx context.Context, token string) (domain.User, error)

func BuildGetCurrentUser(sessions sessionReader, repo currentUserRepository) GetCurrentUser {
	return func(ctx context.Context, token string) (domain.User, error) {
		if token == "" {
			return domain.User{}, domain.ErrNoCurrentUser
		}

		username, ok := sessions.Get(token)
		if !ok {
			return domain.User{}, domain.ErrNoCurrentUser
		}

		user, err := repo.GetUser(ctx, username)
		if err != nil {
			// A live session pointing at a missing user means the stores disagree
			err = fmt.Errorf("failed to get user for session: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"username": username,
			})
			return domain.User{}, err
		}

		return user, nil
	}
}
