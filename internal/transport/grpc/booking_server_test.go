package grpc

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slotbook/internal/auth"
	"slotbook/internal/domain"
	"slotbook/internal/service/booking"
	"slotbook/internal/store"
)

type fakeBookingService struct {
	createFn            func(ctx context.Context, in booking.CreateInput) (domain.Appointment, error)
	listUserFn          func(ctx context.Context, userID string) ([]domain.Appointment, error)
	listAllFn           func(ctx context.Context) ([]domain.Appointment, error)
	checkAvailabilityFn func(ctx context.Context, date time.Time, hhmm string) (bool, error)
	cancelFn            func(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error)
	confirmFn           func(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error)
}

func (f *fakeBookingService) Create(ctx context.Context, in booking.CreateInput) (domain.Appointment, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeBookingService) ListUserAppointments(ctx context.Context, userID string) ([]domain.Appointment, error) {
	if f.listUserFn == nil {
		panic("ListUserAppointments not configured")
	}
	return f.listUserFn(ctx, userID)
}

func (f *fakeBookingService) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	if f.listAllFn == nil {
		panic("ListAll not configured")
	}
	return f.listAllFn(ctx)
}

func (f *fakeBookingService) CheckAvailability(ctx context.Context, date time.Time, hhmm string) (bool, error) {
	if f.checkAvailabilityFn == nil {
		panic("CheckAvailability not configured")
	}
	return f.checkAvailabilityFn(ctx, date, hhmm)
}

func (f *fakeBookingService) Cancel(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error) {
	if f.cancelFn == nil {
		panic("Cancel not configured")
	}
	return f.cancelFn(ctx, userID, appointmentID)
}

func (f *fakeBookingService) Confirm(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error) {
	if f.confirmFn == nil {
		panic("Confirm not configured")
	}
	return f.confirmFn(ctx, userID, appointmentID)
}

func asUser(uid string) context.Context {
	return auth.WithUserID(context.Background(), uid)
}

func TestCreateAppointment_RequiresCaller(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{}, slog.Default())

	_, err := srv.CreateAppointment(context.Background(), &CreateAppointmentRequest{Date: "2025-06-10", Time: "14:00"})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.Unauthenticated)
	}
}

func TestCreateAppointment_RejectsInvalidDate(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{}, slog.Default())

	_, err := srv.CreateAppointment(asUser("u1"), &CreateAppointmentRequest{Date: "10/06/2025", Time: "14:00"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}
	if Reason(err) != ReasonInvalidArgument {
		t.Fatalf("reason = %q, want %q", Reason(err), ReasonInvalidArgument)
	}
}

func TestCreateAppointment_PassesCallerToService(t *testing.T) {
	var got booking.CreateInput
	id := uuid.MustParse("00000000-0000-0000-0000-000000000010")
	srv := NewBookingServer(&fakeBookingService{
		createFn: func(ctx context.Context, in booking.CreateInput) (domain.Appointment, error) {
			got = in
			return domain.Appointment{
				ID:     id,
				UserID: in.UserID,
				Date:   in.Date,
				Time:   "14:00",
				Status: domain.StatusPending,
			}, nil
		},
	}, slog.Default())

	resp, err := srv.CreateAppointment(asUser("u1"), &CreateAppointmentRequest{Date: "2025-06-10", Time: "14:00"})
	if err != nil {
		t.Fatalf("CreateAppointment error: %v", err)
	}
	if got.UserID != "u1" || got.Time != "14:00" || !got.Date.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("input = %+v", got)
	}
	a := resp.Appointment
	if a.ID != id.String() || a.Date != "2025-06-10" || a.Status != "pending" {
		t.Fatalf("appointment = %+v", a)
	}
}

func TestCreateAppointment_MapsServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   codes.Code
		reason string
	}{
		{"conflict", store.ErrConflict, codes.AlreadyExists, ReasonSlotTaken},
		{"limit", store.ErrBookingLimit, codes.FailedPrecondition, ReasonBookingLimit},
		{"unavailable", store.ErrUnavailable, codes.Unavailable, ReasonUnavailable},
		{"internal", errors.New("boom"), codes.Internal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewBookingServer(&fakeBookingService{
				createFn: func(ctx context.Context, in booking.CreateInput) (domain.Appointment, error) {
					return domain.Appointment{}, tt.err
				},
			}, slog.Default())

			_, err := srv.CreateAppointment(asUser("u1"), &CreateAppointmentRequest{Date: "2025-06-10", Time: "14:00"})
			if status.Code(err) != tt.code {
				t.Fatalf("code = %s, want %s", status.Code(err), tt.code)
			}
			if Reason(err) != tt.reason {
				t.Fatalf("reason = %q, want %q", Reason(err), tt.reason)
			}
		})
	}
}

func TestCancelAppointment_RejectsInvalidUUID(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{}, slog.Default())

	_, err := srv.CancelAppointment(asUser("u1"), &CancelAppointmentRequest{AppointmentID: "not-a-uuid"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}
}

func TestCancelAppointment_MapsNotFound(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{
		cancelFn: func(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error) {
			return domain.Appointment{}, store.ErrNotFound
		},
	}, slog.Default())

	_, err := srv.CancelAppointment(asUser("u1"), &CancelAppointmentRequest{AppointmentID: "00000000-0000-0000-0000-000000000020"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.NotFound)
	}
}

func TestConfirmAppointment_MapsInvalidTransition(t *testing.T) {
	var gotUser string
	srv := NewBookingServer(&fakeBookingService{
		confirmFn: func(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error) {
			gotUser = userID
			return domain.Appointment{}, domain.ErrInvalidTransition
		},
	}, slog.Default())

	_, err := srv.ConfirmAppointment(asUser("u7"), &ConfirmAppointmentRequest{AppointmentID: "00000000-0000-0000-0000-000000000020"})
	if status.Code(err) != codes.FailedPrecondition || Reason(err) != ReasonInvalidTransition {
		t.Fatalf("err = %v, want FailedPrecondition/%s", err, ReasonInvalidTransition)
	}
	if gotUser != "u7" {
		t.Fatalf("user = %q, want u7", gotUser)
	}
}

func TestCheckAvailability_DoesNotRequireCaller(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{
		checkAvailabilityFn: func(ctx context.Context, date time.Time, hhmm string) (bool, error) {
			return hhmm == "15:00", nil
		},
	}, slog.Default())

	resp, err := srv.CheckAvailability(context.Background(), &CheckAvailabilityRequest{Date: "2025-06-10", Time: "15:00"})
	if err != nil {
		t.Fatalf("CheckAvailability error: %v", err)
	}
	if !resp.Available {
		t.Fatalf("available = false, want true")
	}
}

func TestListMyAppointments_ScopesToCaller(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{
		listUserFn: func(ctx context.Context, userID string) ([]domain.Appointment, error) {
			if userID != "u1" {
				t.Fatalf("user = %q, want u1", userID)
			}
			return []domain.Appointment{{UserID: "u1", Time: "09:00"}}, nil
		},
	}, slog.Default())

	resp, err := srv.ListMyAppointments(asUser("u1"), &ListMyAppointmentsRequest{})
	if err != nil {
		t.Fatalf("ListMyAppointments error: %v", err)
	}
	if len(resp.Appointments) != 1 || resp.Appointments[0].Time != "09:00" {
		t.Fatalf("appointments = %+v", resp.Appointments)
	}
}
