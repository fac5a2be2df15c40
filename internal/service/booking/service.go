package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

type ValidationError struct {
	field string
	msg   string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Field names the offending input, e.g. "time".
func (e *ValidationError) Field() string {
	return e.field
}

func validationError(field, msg string) error {
	return &ValidationError{field: field, msg: msg}
}

// Recorder observes booking outcomes. metrics.Booking satisfies it.
type Recorder interface {
	BookingAttempt(outcome string)
	StatusTransition(status domain.Status, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) BookingAttempt(string)                  {}
func (nopRecorder) StatusTransition(domain.Status, string) {}

// Window bounds the calendar days open for booking. Zero bounds are open.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) contains(day time.Time) bool {
	if !w.Start.IsZero() && day.Before(domain.DateOf(w.Start)) {
		return false
	}
	if !w.End.IsZero() && day.After(domain.DateOf(w.End)) {
		return false
	}
	return true
}

type Options struct {
	Window           Window
	MaxActivePerUser int
	Recorder         Recorder
}

type Service struct {
	repo     store.AppointmentRepository
	window   Window
	maxPer   int
	recorder Recorder
}

func NewService(repo store.AppointmentRepository, opts Options) *Service {
	rec := opts.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{
		repo:     repo,
		window:   opts.Window,
		maxPer:   opts.MaxActivePerUser,
		recorder: rec,
	}
}

type CreateInput struct {
	UserID string
	Date   time.Time
	Time   string
}

// Create books the slot for the user. The store's conditional insert decides
// conflicts, so two concurrent requests for one slot cannot both succeed.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	appt, err := s.validateCreate(in)
	if err != nil {
		s.recorder.BookingAttempt("invalid")
		return domain.Appointment{}, err
	}

	out, err := s.repo.Insert(ctx, appt, store.InsertOptions{MaxActivePerUser: s.maxPer})
	s.recorder.BookingAttempt(bookingOutcome(err))
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// normalizeUserID gives every operation the same owner key that Create stores.
func normalizeUserID(s string) string {
	return strings.TrimSpace(s)
}

func (s *Service) validateCreate(in CreateInput) (domain.Appointment, error) {
	userID := normalizeUserID(in.UserID)
	if userID == "" {
		return domain.Appointment{}, validationError("user_id", "user_id is required")
	}
	if in.Date.IsZero() {
		return domain.Appointment{}, validationError("date", "date is required")
	}
	hhmm, err := domain.ParseTime(in.Time)
	if err != nil {
		return domain.Appointment{}, validationError("time", "time must be HH:MM in 24-hour form")
	}

	day := domain.DateOf(in.Date)
	if !s.window.contains(day) {
		return domain.Appointment{}, validationError("date", "date is outside the booking window")
	}

	return domain.Appointment{
		UserID: userID,
		Date:   day,
		Time:   hhmm,
		Status: domain.StatusPending,
	}, nil
}

func (s *Service) ListUserAppointments(ctx context.Context, userID string) ([]domain.Appointment, error) {
	userID = normalizeUserID(userID)
	if userID == "" {
		return nil, validationError("user_id", "user_id is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	return s.repo.ListAll(ctx)
}

// CheckAvailability reports whether no active appointment holds the slot. The
// answer is advisory; Create remains the authority.
func (s *Service) CheckAvailability(ctx context.Context, date time.Time, hhmm string) (bool, error) {
	if date.IsZero() {
		return false, validationError("date", "date is required")
	}
	t, err := domain.ParseTime(hhmm)
	if err != nil {
		return false, validationError("time", "time must be HH:MM in 24-hour form")
	}
	day := domain.DateOf(date)
	if !s.window.contains(day) {
		return false, nil
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return false, err
	}
	key := domain.Slot{Date: day, Time: t}.Key()
	for _, a := range all {
		if a.Status.Active() && a.Slot().Key() == key {
			return false, nil
		}
	}
	return true, nil
}

// Cancel is idempotent: cancelling a cancelled appointment returns it unchanged.
func (s *Service) Cancel(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error) {
	return s.transition(ctx, userID, appointmentID, domain.StatusCancelled)
}

func (s *Service) Confirm(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error) {
	return s.transition(ctx, userID, appointmentID, domain.StatusConfirmed)
}

func (s *Service) transition(ctx context.Context, userID string, appointmentID uuid.UUID, next domain.Status) (domain.Appointment, error) {
	userID = normalizeUserID(userID)
	if userID == "" {
		return domain.Appointment{}, validationError("user_id", "user_id is required")
	}
	if appointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id", "appointment_id is required")
	}

	out, err := s.repo.UpdateStatus(ctx, appointmentID, next, store.UpdateOptions{UserID: userID})
	s.recorder.StatusTransition(next, transitionOutcome(err))
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	case errors.Is(err, store.ErrBookingLimit):
		return "limit"
	case errors.Is(err, store.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func transitionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, store.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
