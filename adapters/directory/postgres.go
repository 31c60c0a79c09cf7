package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeventure/warden/core"
	"github.com/codeventure/warden/ports"
)

// PostgresDirectory implements the Directory interface on a pgx pool.
// password_hash is NULL for provider-only accounts and maps to an empty
// string on the Principal.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory creates a new Postgres-backed directory.
func NewPostgresDirectory(pool *pgxpool.Pool) ports.Directory {
	return &PostgresDirectory{pool: pool}
}

const principalColumns = `id, email, username, COALESCE(password_hash, ''), created_at`

// FindByEmail returns the principal with the given email, or (nil, nil).
func (d *PostgresDirectory) FindByEmail(ctx context.Context, email string) (*core.Principal, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM users WHERE email = $1`, email)
	return scanPrincipal(row)
}

// FindByID returns the principal with the given id, or (nil, nil).
func (d *PostgresDirectory) FindByID(ctx context.Context, id string) (*core.Principal, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM users WHERE id = $1`, id)
	return scanPrincipal(row)
}

// Create persists a new principal. A duplicate email maps to ErrEmailTaken.
func (d *PostgresDirectory) Create(ctx context.Context, username, email, passwordHash string) (*core.Principal, error) {
	p := &core.Principal{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	var hash any
	if passwordHash != "" {
		hash = passwordHash
	}

	_, err := d.pool.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Email, p.Username, hash, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, core.ErrEmailTaken
		}
		return nil, fmt.Errorf("create principal: %w", err)
	}

	return p, nil
}

func scanPrincipal(row pgx.Row) (*core.Principal, error) {
	var p core.Principal
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.PasswordHash, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan principal: %w", err)
	}
	return &p, nil
}
