package commentrepo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"itemshare/model"
)

// Detail is a comment row joined with its author's name.
type Detail struct {
	model.Comment
	AuthorName string `db:"author_name"`
}

type Repo interface {
	Insert(ctx context.Context, c *model.Comment) error
	ForItems(ctx context.Context, itemIDs []int64) ([]Detail, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, c *model.Comment) error {
	const q = `
		INSERT INTO comments (item_id, author_id, text, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, c.ItemID, c.AuthorID, c.Text, c.Created).Scan(&c.ID)
}

func (r *repo) ForItems(ctx context.Context, itemIDs []int64) ([]Detail, error) {
	if len(itemIDs) == 0 {
		return []Detail{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT c.id, c.item_id, c.author_id, c.text, c.created,
		       u.name AS author_name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.item_id IN (?)
		ORDER BY c.created`, itemIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	out := []Detail{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}
