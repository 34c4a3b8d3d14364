package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kmoholt/starcade/internal/domain"
)

type signUpUserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
}

type sessionCreator interface {
	Create(username string) string
}

type SignUp func(ctx context.Context, username, email, password string) (string, domain.User, error)

func BuildSignUp(repo signUpUserRepository, sessions sessionCreator, nowFunc func() time.Time) SignUp {
	return func(ctx context.Context, username, email, password string) (string, domain.User, error) {
		if username == "" || email == "" || password == "" {
			return "", domain.User{}, domain.ErrMissingFields
		}

		user := domain.User{
			Username:     username,
			Email:        email,
			Password:     password,
			Achievements: domain.AchievementRecord{},
			CreatedAt:    nowFunc(),
		}

		if err := repo.CreateUser(ctx, user); err != nil {
			return "", domain.User{}, fmt.Errorf("failed to create user: %w", err)
		}

		token := sessions.Create(username)

		return token, user, nil
	}
}
