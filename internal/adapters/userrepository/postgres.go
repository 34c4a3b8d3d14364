package userrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/reporting"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db     *sqlx.DB
	schema string

	tracer trace.Tracer
}

func NewPostgres(db *sqlx.DB, schema string) *Postgres {
	tracer := otel.Tracer("starcade/userrepository/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

type dbUser struct {
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Password     string    `db:"password"`
	Achievements []byte    `db:"achievements"`
	CreatedAt    time.Time `db:"created_at"`
}

func (p *Postgres) CreateUser(ctx context.Context, user domain.User) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.CreateUser")
	defer span.End()

	if user.Username == "" {
		err := fmt.Errorf("username is empty")
		reporting.Report(ctx, err)
		return err
	}

	achievements, err := marshalAchievements(user.Achievements)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"username": user.Username,
		})
		return err
	}

	result, err := p.db.ExecContext(
		ctx,
		fmt.Sprintf(`INSERT INTO %s.users
		(username, email, password, achievements, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING`,
			pq.QuoteIdentifier(p.schema)),
		user.Username,
		user.Email,
		user.Password,
		achievements,
		user.CreatedAt,
	)
	if err != nil {
		err := fmt.Errorf("failed to insert user: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"username": user.Username,
		})
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("failed to get rows affected: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"username": user.Username,
		})
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrDuplicateUser
	}

	return nil
}

func (p *Postgres) GetUser(ctx context.Context, username string) (domain.User, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetUser")
	defer span.End()

	var user dbUser
	err := p.db.QueryRowxContext(
		ctx,
		fmt.Sprintf(`SELECT username, email, password, achievements, created_at
		FROM %s.users
		WHERE username = $1`,
			pq.QuoteIdentifier(p.schema)),
		username,
	).StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		err := fmt.Errorf("failed to query user: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"username": username,
		})
		return domain.User{}, err
	}

	return p.toDomainUser(ctx, user)
}

func (p *Postgres) StoreUser(ctx context.Context, user domain.User) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.StoreUser")
	defer span.End()

	achievements, err := marshalAchievements(user.Achievements)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"username": user.Username,
		})
		return err
	}

	result, err := p.db.ExecContext(
		ctx,
		fmt.Sprintf(`UPDATE %s.users
		SET email = $2, password = $3, achievements = $4
		WHERE username = $1`,
			pq.QuoteIdentifier(p.schema)),
		user.Username,
		user.Email,
		user.Password,
		achievements,
	)
	if err != nil {
		err := fmt.Errorf("failed to update user: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"username": user.Username,
		})
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("failed to get rows affected: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"username": user.Username,
		})
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (p *Postgres) AllUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.AllUsers")
	defer span.End()

	rows, err := p.db.QueryxContext(
		ctx,
		fmt.Sprintf(`SELECT username, email, password, achievements, created_at
		FROM %s.users
		ORDER BY created_at, username`,
			pq.QuoteIdentifier(p.schema)),
	)
	if err != nil {
		err := fmt.Errorf("failed to query users: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user dbUser
		if err := rows.StructScan(&user); err != nil {
			err := fmt.Errorf("failed to scan user: %w", err)
			reporting.Report(ctx, err)
			return nil, err
		}

		domainUser, err := p.toDomainUser(ctx, user)
		if err != nil {
			return nil, err
		}
		users = append(users, domainUser)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("failed to iterate users: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	return users, nil
}

func (p *Postgres) toDomainUser(ctx context.Context, user dbUser) (domain.User, error) {
	achievements, err := unmarshalAchievements(user.Achievements)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"username": user.Username,
		})
		return domain.User{}, err
	}

	return domain.User{
		Username:     user.Username,
		Email:        user.Email,
		Password:     user.Password,
		Achievements: achievements,
		CreatedAt:    user.CreatedAt,
	}, nil
}

// Type assertion
var _ UserRepository = (*Postgres)(nil)
