package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid status transition")

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Active reports whether an appointment in this status occupies its slot.
func (s Status) Active() bool {
	return s != StatusCancelled
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	UserID    string    `bun:"user_id,notnull"`
	Date      time.Time `bun:"slot_date,type:date,notnull"`
	Time      string    `bun:"slot_time,notnull"`
	Status    Status    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (a Appointment) Slot() Slot {
	return Slot{Date: a.Date, Time: a.Time}
}

// TransitionTo moves the appointment to next. Requests for the current status
// of a confirmed or cancelled appointment are no-ops and report changed=false.
func (a *Appointment) TransitionTo(next Status) (changed bool, err error) {
	if !next.Valid() {
		return false, ErrInvalidTransition
	}
	if a.Status == next && next != StatusPending {
		return false, nil
	}

	switch {
	case a.Status == StatusPending && next == StatusConfirmed,
		a.Status == StatusPending && next == StatusCancelled,
		a.Status == StatusConfirmed && next == StatusCancelled:
		a.Status = next
		return true, nil
	default:
		return false, ErrInvalidTransition
	}
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
