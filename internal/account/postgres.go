// internal/account/postgres.go
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Schema creates the accounts table PostgresRepository uses.
const Schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		balance NUMERIC(12, 2) NOT NULL CHECK (balance >= 0),
		owned_courses TEXT[] NOT NULL DEFAULT '{}',
		owned_packs TEXT[] NOT NULL DEFAULT '{}',
		version INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// PostgresRepository stores accounts in the accounts table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, balance, owned_courses, owned_packs, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Wallet.Balance, pq.Array(a.Ownership.Courses.Sorted()), pq.Array(a.Ownership.Packs.Sorted()),
		a.Version, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, id uuid.UUID) (*Account, error) {
	var (
		a       Account
		courses []string
		packs   []string
	)
	err := row.Scan(&a.ID, &a.Wallet.Balance, pq.Array(&courses), pq.Array(&packs), &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	a.Ownership = Ownership{Courses: NewIDSet(courses...), Packs: NewIDSet(packs...)}
	return &a, nil
}

const selectAccount = `
	SELECT id, balance, owned_courses, owned_packs, version, created_at, updated_at
	FROM accounts
	WHERE id = $1
`

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, selectAccount, id), id)
}

// Update locks the row with SELECT FOR UPDATE for the duration of fn.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fn func(*Account) error) (*Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	a, err := scanAccount(tx.QueryRowContext(ctx, selectAccount+" FOR UPDATE", id), id)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	a.Version++
	a.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, owned_courses = $2, owned_packs = $3, version = $4, updated_at = $5
		WHERE id = $6
	`, a.Wallet.Balance, pq.Array(a.Ownership.Courses.Sorted()), pq.Array(a.Ownership.Packs.Sorted()), a.Version, a.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return a, nil
}
