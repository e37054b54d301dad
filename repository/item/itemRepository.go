package itemrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"itemshare/model"
)

type Repo interface {
	Create(ctx context.Context, it *model.Item) error
	Update(ctx context.Context, it *model.Item) error
	ByID(ctx context.Context, id int64) (*model.Item, error)
	ByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]model.Item, error)
	SearchAvailable(ctx context.Context, text string, limit, offset int) ([]model.Item, error)
	ByRequestIDs(ctx context.Context, requestIDs []int64) ([]model.Item, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

const itemCols = `id, name, description, available, owner_id, request_id`

func (r *repo) Create(ctx context.Context, it *model.Item) error {
	const q = `
		INSERT INTO items (name, description, available, owner_id, request_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		it.Name, it.Description, it.Available, it.OwnerID, it.RequestID,
	).Scan(&it.ID)
}

func (r *repo) Update(ctx context.Context, it *model.Item) error {
	const q = `
		UPDATE items
		SET name = $2, description = $3, available = $4
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, it.ID, it.Name, it.Description, it.Available)
	return err
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Item, error) {
	const q = `SELECT ` + itemCols + ` FROM items WHERE id = $1`
	it := &model.Item{}
	err := r.db.GetContext(ctx, it, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *repo) ByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]model.Item, error) {
	const q = `
		SELECT ` + itemCols + `
		FROM items
		WHERE owner_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`
	out := []model.Item{}
	if err := r.db.SelectContext(ctx, &out, q, ownerID, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) SearchAvailable(ctx context.Context, text string, limit, offset int) ([]model.Item, error) {
	const q = `
		SELECT ` + itemCols + `
		FROM items
		WHERE available
		  AND (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY id
		LIMIT $2 OFFSET $3`
	out := []model.Item{}
	if err := r.db.SelectContext(ctx, &out, q, text, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ByRequestIDs(ctx context.Context, requestIDs []int64) ([]model.Item, error) {
	if len(requestIDs) == 0 {
		return []model.Item{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT `+itemCols+` FROM items WHERE request_id IN (?) ORDER BY id`, requestIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	out := []model.Item{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}
