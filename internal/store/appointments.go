package store

import (
	"context"

	"github.com/google/uuid"

	"slotbook/internal/domain"
)

type InsertOptions struct {
	// MaxActivePerUser caps the owner's non-cancelled appointments. Zero disables the cap.
	MaxActivePerUser int
}

type UpdateOptions struct {
	// UserID, when set, restricts the update to appointments owned by that user.
	UserID string
}

// AppointmentRepository persists appointments. Insert is a conditional insert:
// it fails with ErrConflict when an active appointment already holds the slot.
type AppointmentRepository interface {
	ListAll(ctx context.Context) ([]domain.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error)
	Insert(ctx context.Context, appt domain.Appointment, opts InsertOptions) (domain.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.Status, opts UpdateOptions) (domain.Appointment, error)
	Ping(ctx context.Context) error
}
