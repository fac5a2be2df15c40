package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

func appt(userID string, day int, hhmm string) domain.Appointment {
	return domain.Appointment{
		UserID: userID,
		Date:   time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		Time:   hhmm,
		Status: domain.StatusPending,
	}
}

func TestInsertAssignsIdentityAndTimestamps(t *testing.T) {
	r := NewAppointmentRepo()

	got, err := r.Insert(context.Background(), appt("u1", 10, "14:00"), store.InsertOptions{})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %+v", got)
	}
}

func TestInsertRejectsActiveSlotAndAcceptsAfterCancel(t *testing.T) {
	ctx := context.Background()
	r := NewAppointmentRepo()

	first, err := r.Insert(ctx, appt("u1", 10, "14:00"), store.InsertOptions{})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, err := r.Insert(ctx, appt("u2", 10, "14:00"), store.InsertOptions{}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
	if _, err := r.Insert(ctx, appt("u2", 10, "14:30"), store.InsertOptions{}); err != nil {
		t.Fatalf("different time: %v", err)
	}

	if _, err := r.UpdateStatus(ctx, first.ID, domain.StatusCancelled, store.UpdateOptions{}); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if _, err := r.Insert(ctx, appt("u2", 10, "14:00"), store.InsertOptions{}); err != nil {
		t.Fatalf("insert after cancel: %v", err)
	}

	all, err := r.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3 (cancelled record retained)", len(all))
	}
}

func TestInsertConcurrentSameSlot(t *testing.T) {
	r := NewAppointmentRepo()

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Insert(context.Background(), appt("u", 10, "09:00"), store.InsertOptions{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != workers-1 {
		t.Fatalf("ok=%d conflicts=%d, want 1 and %d", ok, conflicts, workers-1)
	}
}

func TestInsertMaxActivePerUser(t *testing.T) {
	ctx := context.Background()
	r := NewAppointmentRepo()
	opts := store.InsertOptions{MaxActivePerUser: 1}

	first, err := r.Insert(ctx, appt("u1", 10, "08:00"), opts)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, err := r.Insert(ctx, appt("u1", 11, "08:00"), opts); !errors.Is(err, store.ErrBookingLimit) {
		t.Fatalf("err = %v, want %v", err, store.ErrBookingLimit)
	}
	if _, err := r.UpdateStatus(ctx, first.ID, domain.StatusCancelled, store.UpdateOptions{}); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if _, err := r.Insert(ctx, appt("u1", 11, "08:00"), opts); err != nil {
		t.Fatalf("insert after cancel: %v", err)
	}
}

func TestListByUserOrdersByDateThenTime(t *testing.T) {
	ctx := context.Background()
	r := NewAppointmentRepo()

	for _, a := range []domain.Appointment{
		appt("u1", 12, "09:00"),
		appt("u2", 9, "09:00"),
		appt("u1", 10, "15:00"),
		appt("u1", 10, "08:30"),
	} {
		if _, err := r.Insert(ctx, a, store.InsertOptions{}); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}

	got, err := r.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	want := []string{"2025-06-10T08:30", "2025-06-10T15:00", "2025-06-12T09:00"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Slot().Key() != want[i] {
			t.Fatalf("got[%d] = %s, want %s", i, got[i].Slot().Key(), want[i])
		}
	}

	none, err := r.ListByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("len = %d, want 0", len(none))
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	r := NewAppointmentRepo()
	_, err := r.UpdateStatus(context.Background(), uuid.New(), domain.StatusCancelled, store.UpdateOptions{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
}
