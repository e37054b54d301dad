// model/request.go
package model

import "time"

// Request is a wish for an item that does not exist in the catalog yet.
// Items created later may point back at it via Item.RequestID.
type Request struct {
	ID          int64     `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	RequesterID int64     `json:"requesterId" db:"requester_id"`
	Created     time.Time `json:"created" db:"created"`
}
