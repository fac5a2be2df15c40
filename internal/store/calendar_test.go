package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"slotbook/internal/domain"
)

type fakeBookingTx struct {
	countFn  func(ctx context.Context, userID string) (int, error)
	insertFn func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	lockFn   func(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	saveFn   func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
}

func (f *fakeBookingTx) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	if f.countFn == nil {
		panic("CountActiveByUser not configured")
	}
	return f.countFn(ctx, userID)
}

func (f *fakeBookingTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.insertFn == nil {
		panic("InsertAppointment not configured")
	}
	return f.insertFn(ctx, appt)
}

func (f *fakeBookingTx) LockAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if f.lockFn == nil {
		panic("LockAppointment not configured")
	}
	return f.lockFn(ctx, id)
}

func (f *fakeBookingTx) SaveStatus(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.saveFn == nil {
		panic("SaveStatus not configured")
	}
	return f.saveFn(ctx, appt)
}

func TestInsertWithinLimit(t *testing.T) {
	appt := domain.Appointment{UserID: "u1", Time: "10:00", Status: domain.StatusPending}

	t.Run("no limit skips the count", func(t *testing.T) {
		inserted := false
		tx := &fakeBookingTx{
			insertFn: func(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
				inserted = true
				return a, nil
			},
		}
		if _, err := InsertWithinLimit(context.Background(), tx, appt, InsertOptions{}); err != nil {
			t.Fatalf("err = %v, want nil", err)
		}
		if !inserted {
			t.Fatalf("expected insert")
		}
	})

	t.Run("limit reached rejects", func(t *testing.T) {
		tx := &fakeBookingTx{
			countFn: func(ctx context.Context, userID string) (int, error) {
				if userID != "u1" {
					t.Fatalf("userID = %q, want u1", userID)
				}
				return 1, nil
			},
		}
		_, err := InsertWithinLimit(context.Background(), tx, appt, InsertOptions{MaxActivePerUser: 1})
		if !errors.Is(err, ErrBookingLimit) {
			t.Fatalf("err = %v, want %v", err, ErrBookingLimit)
		}
	})

	t.Run("under limit inserts", func(t *testing.T) {
		tx := &fakeBookingTx{
			countFn: func(ctx context.Context, userID string) (int, error) { return 1, nil },
			insertFn: func(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
				return a, nil
			},
		}
		if _, err := InsertWithinLimit(context.Background(), tx, appt, InsertOptions{MaxActivePerUser: 2}); err != nil {
			t.Fatalf("err = %v, want nil", err)
		}
	})
}

func TestApplyStatus(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000101")

	lockReturning := func(status domain.Status) func(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
		return func(ctx context.Context, got uuid.UUID) (domain.Appointment, error) {
			return domain.Appointment{ID: got, UserID: "u1", Status: status}, nil
		}
	}

	t.Run("changed status is saved", func(t *testing.T) {
		var saved domain.Appointment
		tx := &fakeBookingTx{
			lockFn: lockReturning(domain.StatusPending),
			saveFn: func(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
				saved = a
				return a, nil
			},
		}
		out, err := ApplyStatus(context.Background(), tx, id, domain.StatusConfirmed, UpdateOptions{UserID: "u1"})
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if saved.Status != domain.StatusConfirmed || out.Status != domain.StatusConfirmed {
			t.Fatalf("saved=%q out=%q, want confirmed", saved.Status, out.Status)
		}
	})

	t.Run("no-op does not write", func(t *testing.T) {
		tx := &fakeBookingTx{lockFn: lockReturning(domain.StatusCancelled)}
		out, err := ApplyStatus(context.Background(), tx, id, domain.StatusCancelled, UpdateOptions{})
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if out.Status != domain.StatusCancelled {
			t.Fatalf("status = %q, want cancelled", out.Status)
		}
	})

	t.Run("invalid transition does not write", func(t *testing.T) {
		tx := &fakeBookingTx{lockFn: lockReturning(domain.StatusCancelled)}
		_, err := ApplyStatus(context.Background(), tx, id, domain.StatusConfirmed, UpdateOptions{})
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("err = %v, want %v", err, domain.ErrInvalidTransition)
		}
	})

	t.Run("other owner is not found", func(t *testing.T) {
		tx := &fakeBookingTx{lockFn: lockReturning(domain.StatusPending)}
		_, err := ApplyStatus(context.Background(), tx, id, domain.StatusCancelled, UpdateOptions{UserID: "u2"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want %v", err, ErrNotFound)
		}
	})
}
