package store

import (
	"context"

	"github.com/google/uuid"

	"slotbook/internal/domain"
)

// BookingTx is the set of statements a transactional backend runs while it
// holds the owner's booking lock.
type BookingTx interface {
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	LockAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	SaveStatus(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
}

// InsertWithinLimit checks the owner's active count against opts before inserting.
func InsertWithinLimit(ctx context.Context, tx BookingTx, appt domain.Appointment, opts InsertOptions) (domain.Appointment, error) {
	if opts.MaxActivePerUser > 0 {
		n, err := tx.CountActiveByUser(ctx, appt.UserID)
		if err != nil {
			return domain.Appointment{}, err
		}
		if n >= opts.MaxActivePerUser {
			return domain.Appointment{}, ErrBookingLimit
		}
	}
	return tx.InsertAppointment(ctx, appt)
}

// ApplyStatus loads the appointment under lock, applies the transition and
// persists it when the status changed.
func ApplyStatus(ctx context.Context, tx BookingTx, id uuid.UUID, next domain.Status, opts UpdateOptions) (domain.Appointment, error) {
	appt, err := tx.LockAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if opts.UserID != "" && appt.UserID != opts.UserID {
		return domain.Appointment{}, ErrNotFound
	}

	changed, err := appt.TransitionTo(next)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !changed {
		return appt, nil
	}
	return tx.SaveStatus(ctx, appt)
}
