// model/item.go
package model

type Item struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Available   bool   `json:"available" db:"available"`
	OwnerID     int64  `json:"ownerId" db:"owner_id"`
	RequestID   *int64 `json:"requestId,omitempty" db:"request_id"`
}
