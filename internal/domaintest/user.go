package domaintest

import (
	"fmt"
	"time"

	"github.com/kmoholt/starcade/internal/domain"
)

type userBuilder struct {
	user *domain.User
}

func (ub *userBuilder) WithEmail(email string) *userBuilder {
	ub.user.Email = email
	return ub
}

func (ub *userBuilder) WithPassword(password string) *userBuilder {
	ub.user.Password = password
	return ub
}

func (ub *userBuilder) WithCreatedAt(createdAt time.Time) *userBuilder {
	ub.user.CreatedAt = createdAt
	return ub
}

func (ub *userBuilder) WithAchievements(achievements domain.AchievementRecord) *userBuilder {
	ub.user.Achievements = achievements
	return ub
}

func (ub *userBuilder) Build() domain.User {
	return *ub.user
}

func NewUserBuilder(username string) *userBuilder {
	user := &domain.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		Password:  "hunter2",
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	return &userBuilder{
		user: user,
	}
}
