package requestrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"itemshare/model"
)

type Repo interface {
	Insert(ctx context.Context, req *model.Request) error
	ByID(ctx context.Context, id int64) (*model.Request, error)
	ByRequester(ctx context.Context, requesterID int64) ([]model.Request, error)
	// AllOthers lists requests filed by everyone except the given user,
	// newest first.
	AllOthers(ctx context.Context, userID int64, limit, offset int) ([]model.Request, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, req *model.Request) error {
	const q = `
		INSERT INTO requests (description, requester_id, created)
		VALUES ($1, $2, $3)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, req.Description, req.RequesterID, req.Created).Scan(&req.ID)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Request, error) {
	const q = `SELECT id, description, requester_id, created FROM requests WHERE id = $1`
	req := &model.Request{}
	err := r.db.GetContext(ctx, req, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *repo) ByRequester(ctx context.Context, requesterID int64) ([]model.Request, error) {
	const q = `
		SELECT id, description, requester_id, created
		FROM requests
		WHERE requester_id = $1
		ORDER BY created DESC`
	out := []model.Request{}
	if err := r.db.SelectContext(ctx, &out, q, requesterID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) AllOthers(ctx context.Context, userID int64, limit, offset int) ([]model.Request, error) {
	const q = `
		SELECT id, description, requester_id, created
		FROM requests
		WHERE requester_id <> $1
		ORDER BY created DESC
		LIMIT $2 OFFSET $3`
	out := []model.Request{}
	if err := r.db.SelectContext(ctx, &out, q, userID, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}
