package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"itemshare/model"
	"itemshare/util/apperr"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, q, u.Name, u.Email).Scan(&u.ID)
	return translateUnique(err)
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET name = $2, email = $3
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.Email)
	return translateUnique(err)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT id, name, email FROM users WHERE id = $1`
	u := &model.User{}
	err := r.db.GetContext(ctx, u, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT id, name, email FROM users ORDER BY id`
	out := []model.User{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// translateUnique maps a unique-constraint violation on users.email to the
// Conflict kind so callers do not have to know driver error codes.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.E(apperr.Conflict, "email already in use")
	}
	return err
}
