package userrepository

import (
	"context"
	"sync"

	"github.com/kmoholt/starcade/internal/domain"
)

// Memory keeps the user collection as an ordered slice, mirroring the
// whole-collection read-modify-write semantics of the original browser
// storage. Used in development and tests.
type Memory struct {
	mutex sync.Mutex
	users []domain.User
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateUser(ctx context.Context, user domain.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username {
			return domain.ErrDuplicateUser
		}
	}

	m.users = append(m.users, user)
	return nil
}

func (m *Memory) GetUser(ctx context.Context, username string) (domain.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (m *Memory) StoreUser(ctx context.Context, user domain.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, existing := range m.users {
		if existing.Username == user.Username {
			m.users[i] = user
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (m *Memory) AllUsers(ctx context.Context) ([]domain.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	users := make([]domain.User, len(m.users))
	copy(users, m.users)
	return users, nil
}

// Type assertion
var _ UserRepository = (*Memory)(nil)
