// internal/model/booking.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusPending is the status every booking starts in.
const StatusPending = "pending"

type Booking struct {
	ID        int64         `db:"id" json:"id"`
	ClientID  uuid.NullUUID `db:"client_id" json:"client_id"`
	StaffID   uuid.NullUUID `db:"staff_id" json:"staff_id"`
	Name      string        `db:"name" json:"name"`
	Email     string        `db:"email" json:"email"`
	Service   *string       `db:"service" json:"service"`
	Date      string        `db:"date" json:"date"`
	Time      string        `db:"time" json:"time"`
	Status    string        `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// NewBooking holds the validated fields of a booking about to be inserted.
type NewBooking struct {
	ClientID uuid.NullUUID
	StaffID  uuid.NullUUID
	Name     string
	Email    string
	Service  *string
	Date     string
	Time     string
}

// BookingEvent is the payload pushed to dashboard subscribers.
type BookingEvent struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

func (b *Booking) Event() BookingEvent {
	ev := BookingEvent{
		ID:    b.ID,
		Name:  b.Name,
		Email: b.Email,
		Date:  b.Date,
		Time:  b.Time,
	}
	if b.Service != nil {
		ev.Service = *b.Service
	}
	return ev
}
