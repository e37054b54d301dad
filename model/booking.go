// model/booking.go
package model

import "time"

type BookingStatus string

const (
	BookingWaiting  BookingStatus = "WAITING"
	BookingApproved BookingStatus = "APPROVED"
	BookingRejected BookingStatus = "REJECTED"
)

type Booking struct {
	ID       int64         `json:"id" db:"id"`
	ItemID   int64         `json:"itemId" db:"item_id"`
	BookerID int64         `json:"bookerId" db:"booker_id"`
	Start    time.Time     `json:"start" db:"start_date"`
	End      time.Time     `json:"end" db:"end_date"`
	Status   BookingStatus `json:"status" db:"status"`
}
