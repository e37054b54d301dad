package model

import "time"

type Comment struct {
	ID       int64     `json:"id" db:"id"`
	ItemID   int64     `json:"itemId" db:"item_id"`
	AuthorID int64     `json:"authorId" db:"author_id"`
	Text     string    `json:"text" db:"text"`
	Created  time.Time `json:"created" db:"created"`
}
