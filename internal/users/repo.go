package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAlreadyExists = errors.New("user already exists")
	ErrNotFound      = errors.New("user not found")
)

type Repo struct{ DB *pgxpool.Pool }

// Register creates the user and its single cart in one transaction.
// The unique email index plus ON CONFLICT DO NOTHING closes the race where
// two concurrent registrations with the same email both succeed: exactly one
// insert wins, the loser sees zero rows and gets ErrAlreadyExists.
func (r *Repo) Register(ctx context.Context, name, email, passwordHash string) (*User, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userID := uuid.NewString()
	ct, err := tx.Exec(ctx, `
		INSERT INTO users(id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
	`, userID, name, email, passwordHash)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrAlreadyExists
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO carts(id, user_id) VALUES ($1, $2)
	`, uuid.NewString(), userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &User{ID: userID, Name: name, Email: email, PasswordHash: passwordHash}, nil
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, email, password_hash FROM users WHERE email=$1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
