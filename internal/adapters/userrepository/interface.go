package userrepository

import (
	"context"

	"github.com/kmoholt/starcade/internal/domain"
)

// UserRepository owns the persisted user collection. StoreUser replaces the
// whole record; concurrent writers race and the last writer wins.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, username string) (domain.User, error)
	StoreUser(ctx context.Context, user domain.User) error
	AllUsers(ctx context.Context) ([]domain.User, error)
}
