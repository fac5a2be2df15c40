package grpc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slotbook/internal/auth"
	"slotbook/internal/domain"
	"slotbook/internal/service/booking"
)

type BookingServer struct {
	svc bookingService
	log *slog.Logger
}

type bookingService interface {
	Create(ctx context.Context, in booking.CreateInput) (domain.Appointment, error)
	ListUserAppointments(ctx context.Context, userID string) ([]domain.Appointment, error)
	ListAll(ctx context.Context) ([]domain.Appointment, error)
	CheckAvailability(ctx context.Context, date time.Time, hhmm string) (bool, error)
	Cancel(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error)
	Confirm(ctx context.Context, userID string, appointmentID uuid.UUID) (domain.Appointment, error)
}

func NewBookingServer(svc bookingService, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.booking")),
	}
}

func (s *BookingServer) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateAppointment"))

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_date"), slog.String("user_id", userID))
		return nil, invalidArgument("date", "date must be YYYY-MM-DD")
	}

	appt, err := s.svc.Create(ctx, booking.CreateInput{
		UserID: userID,
		Date:   date,
		Time:   req.Time,
	})
	if err != nil {
		return nil, s.fail(log, "appointment create failed", err,
			slog.String("user_id", userID),
			slog.String("date", req.Date),
			slog.String("time", req.Time),
		)
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("user_id", appt.UserID),
		slog.String("slot", appt.Slot().String()),
	)
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) ListMyAppointments(ctx context.Context, _ *ListMyAppointmentsRequest) (*ListAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListMyAppointments"))

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	appts, err := s.svc.ListUserAppointments(ctx, userID)
	if err != nil {
		return nil, s.fail(log, "appointments list failed", err, slog.String("user_id", userID))
	}

	log.Debug("appointments listed", slog.String("user_id", userID), slog.Int("count", len(appts)))
	return &ListAppointmentsResponse{Appointments: toWireAppointments(appts)}, nil
}

func (s *BookingServer) ListAllAppointments(ctx context.Context, _ *ListAllAppointmentsRequest) (*ListAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAllAppointments"))

	if _, err := callerID(ctx); err != nil {
		return nil, err
	}

	appts, err := s.svc.ListAll(ctx)
	if err != nil {
		return nil, s.fail(log, "appointments list failed", err)
	}

	log.Debug("all appointments listed", slog.Int("count", len(appts)))
	return &ListAppointmentsResponse{Appointments: toWireAppointments(appts)}, nil
}

func (s *BookingServer) CheckAvailability(ctx context.Context, req *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error) {
	log := s.log.With(slog.String("rpc", "CheckAvailability"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_date"))
		return nil, invalidArgument("date", "date must be YYYY-MM-DD")
	}

	free, err := s.svc.CheckAvailability(ctx, date, req.Time)
	if err != nil {
		return nil, s.fail(log, "availability check failed", err,
			slog.String("date", req.Date),
			slog.String("time", req.Time),
		)
	}
	return &CheckAvailabilityResponse{Available: free}, nil
}

func (s *BookingServer) CancelAppointment(ctx context.Context, req *CancelAppointmentRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "CancelAppointment"))

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"), slog.String("user_id", userID))
		return nil, invalidArgument("appointment_id", "appointment_id must be a UUID")
	}

	appt, err := s.svc.Cancel(ctx, userID, id)
	if err != nil {
		return nil, s.fail(log, "appointment cancel failed", err,
			slog.String("appointment_id", id.String()),
			slog.String("user_id", userID),
		)
	}

	log.Info("appointment cancelled", slog.String("appointment_id", id.String()), slog.String("user_id", userID))
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) ConfirmAppointment(ctx context.Context, req *ConfirmAppointmentRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "ConfirmAppointment"))

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"), slog.String("user_id", userID))
		return nil, invalidArgument("appointment_id", "appointment_id must be a UUID")
	}

	appt, err := s.svc.Confirm(ctx, userID, id)
	if err != nil {
		return nil, s.fail(log, "appointment confirm failed", err,
			slog.String("appointment_id", id.String()),
			slog.String("user_id", userID),
		)
	}

	log.Info("appointment confirmed", slog.String("appointment_id", id.String()), slog.String("user_id", userID))
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

// fail logs err at a level matching its status code and returns the status.
func (s *BookingServer) fail(log *slog.Logger, msg string, err error, attrs ...any) error {
	st := statusFromError(err)
	attrs = append(attrs, slog.Any("err", err), slog.String("code", status.Code(st).String()))
	switch status.Code(st) {
	case codes.Internal, codes.Unavailable:
		log.Error(msg, attrs...)
	case codes.InvalidArgument:
		log.Warn(msg, attrs...)
	default:
		log.Info(msg, attrs...)
	}
	return st
}

func callerID(ctx context.Context) (string, error) {
	uid, ok := auth.UserIDFrom(ctx)
	if !ok || strings.TrimSpace(uid) == "" {
		return "", status.Error(codes.Unauthenticated, "authentication required")
	}
	return uid, nil
}
