package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kmoholt/starcade/internal/domain"
)

const maxFailedLogins = 3

type logInUserRepository interface {
	GetUser(ctx context.Context, username string) (domain.User, error)
}

type lockoutStore interface {
	Lock(key string)
	IsLocked(key string) bool
}

// InvalidCredentialsError carries the number of consecutive failures for the client
type InvalidCredentialsError struct {
	Attempts int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials (attempt %d)", e.Attempts)
}

func (e *InvalidCredentialsError) Unwrap() error {
	return domain.ErrInvalidCredentials
}

type LogIn func(ctx context.Context, clientKey, username, password string) (string, domain.User, error)

func BuildLogIn(repo logInUserRepository, sessions sessionCreator, lockouts lockoutStore) LogIn {
	// Consecutive failures per client. In-process only: restarting the
	// service resets the counts, but active lockouts live in the TTL store.
	var mutex sync.Mutex
	failures := make(map[string]int)

	recordFailure := func(clientKey string) int {
		mutex.Lock()
		defer mutex.Unlock()

		failures[clientKey]++
		attempts := failures[clientKey]
		if attempts >= maxFailedLogins {
			// The count survives the lockout: only a successful login clears
			// it, so the first failure after expiry locks the client again.
			lockouts.Lock(clientKey)
		}
		return attempts
	}

	resetFailures := func(clientKey string) {
		mutex.Lock()
		defer mutex.Unlock()
		delete(failures, clientKey)
	}

	return func(ctx context.Context, clientKey, username, password string) (string, domain.User, error) {
		if lockouts.IsLocked(clientKey) {
			return "", domain.User{}, domain.ErrLoginBlocked
		}

		user, err := repo.GetUser(ctx, username)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				// Unknown username counts as a failed attempt
				attempts := recordFailure(clientKey)
				return "", domain.User{}, &InvalidCredentialsError{Attempts: attempts}
			}
			return "", domain.User{}, fmt.Errorf("failed to get user: %w", err)
		}

		if user.Password != password {
			attempts := recordFailure(clientKey)
			return "", domain.User{}, &InvalidCredentialsError{Attempts: attempts}
		}

		resetFailures(clientKey)

		token := sessions.Create(username)

		return token, user, nil
	}
}
