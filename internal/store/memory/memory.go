// Package memory keeps appointments in process memory. Every operation runs
// under one mutex, so the store is its own single writer.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

type AppointmentRepo struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]domain.Appointment
	order []uuid.UUID
	now   func() time.Time
}

func NewAppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{
		byID: make(map[uuid.UUID]domain.Appointment),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *AppointmentRepo) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Appointment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *AppointmentRepo) ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Appointment
	for _, id := range r.order {
		if a := r.byID[id]; a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *AppointmentRepo) Insert(ctx context.Context, appt domain.Appointment, opts store.InsertOptions) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return store.InsertWithinLimit(ctx, memTx{r: r}, appt, opts)
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.Status, opts store.UpdateOptions) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return store.ApplyStatus(ctx, memTx{r: r}, id, next, opts)
}

func (r *AppointmentRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

// memTx implements store.BookingTx; callers hold r.mu.
type memTx struct {
	r *AppointmentRepo
}

func (t memTx) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, a := range t.r.byID {
		if a.UserID == userID && a.Status.Active() {
			n++
		}
	}
	return n, nil
}

func (t memTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	key := appt.Slot().Key()
	for _, a := range t.r.byID {
		if a.Status.Active() && a.Slot().Key() == key {
			return domain.Appointment{}, store.ErrConflict
		}
	}

	if appt.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	}
	if _, ok := t.r.byID[appt.ID]; ok {
		return domain.Appointment{}, store.ErrConflict
	}
	now := t.r.now()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now

	t.r.byID[appt.ID] = appt
	t.r.order = append(t.r.order, appt.ID)
	return appt, nil
}

func (t memTx) LockAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	a, ok := t.r.byID[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (t memTx) SaveStatus(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	cur, ok := t.r.byID[appt.ID]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	cur.Status = appt.Status
	cur.UpdatedAt = t.r.now()
	t.r.byID[appt.ID] = cur
	return cur, nil
}
