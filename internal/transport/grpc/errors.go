package grpc

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"

	"slotbook/internal/domain"
	"slotbook/internal/service/booking"
	"slotbook/internal/store"
)

const errorDomain = "slotbook"

const (
	ReasonInvalidArgument   = "INVALID_ARGUMENT"
	ReasonSlotTaken         = "SLOT_TAKEN"
	ReasonBookingLimit      = "BOOKING_LIMIT"
	ReasonInvalidTransition = "INVALID_TRANSITION"
	ReasonNotFound          = "NOT_FOUND"
	ReasonUnavailable       = "STORAGE_UNAVAILABLE"
)

func invalidArgument(field, msg string) error {
	return withDetails(codes.InvalidArgument, msg,
		&errdetails.ErrorInfo{Reason: ReasonInvalidArgument, Domain: errorDomain},
		&errdetails.BadRequest{FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: field, Description: msg},
		}},
	)
}

// statusFromError maps service and store errors onto gRPC status codes.
// Anything unrecognized becomes Internal without leaking its text.
func statusFromError(err error) error {
	var vErr *booking.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &vErr):
		return invalidArgument(vErr.Field(), vErr.Error())
	case errors.Is(err, store.ErrConflict):
		return withDetails(codes.AlreadyExists, "That slot is already taken. Pick a different time.",
			&errdetails.ErrorInfo{Reason: ReasonSlotTaken, Domain: errorDomain})
	case errors.Is(err, store.ErrBookingLimit):
		return withDetails(codes.FailedPrecondition, "You have reached the maximum number of active appointments.",
			&errdetails.ErrorInfo{Reason: ReasonBookingLimit, Domain: errorDomain})
	case errors.Is(err, domain.ErrInvalidTransition):
		return withDetails(codes.FailedPrecondition, "A cancelled appointment cannot be confirmed.",
			&errdetails.ErrorInfo{Reason: ReasonInvalidTransition, Domain: errorDomain})
	case errors.Is(err, store.ErrNotFound):
		return withDetails(codes.NotFound, "appointment not found",
			&errdetails.ErrorInfo{Reason: ReasonNotFound, Domain: errorDomain})
	case errors.Is(err, store.ErrUnavailable):
		return withDetails(codes.Unavailable, "storage unavailable, try again later",
			&errdetails.ErrorInfo{Reason: ReasonUnavailable, Domain: errorDomain})
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func withDetails(code codes.Code, msg string, details ...protoadapt.MessageV1) error {
	st := status.New(code, msg)
	withDetails, err := st.WithDetails(details...)
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// Reason extracts the ErrorInfo reason attached to a status error, if any.
func Reason(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}
