package grpc

import (
	"time"

	"slotbook/internal/domain"
)

type Appointment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateAppointmentRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type AppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type ListMyAppointmentsRequest struct{}

type ListAllAppointmentsRequest struct{}

type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

type CheckAvailabilityRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type CheckAvailabilityResponse struct {
	Available bool `json:"available"`
}

type CancelAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type ConfirmAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
}

func toWireAppointment(a domain.Appointment) *Appointment {
	return &Appointment{
		ID:        a.ID.String(),
		UserID:    a.UserID,
		Date:      a.Date.Format(domain.DateLayout),
		Time:      a.Time,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toWireAppointments(in []domain.Appointment) []*Appointment {
	out := make([]*Appointment, 0, len(in))
	for _, a := range in {
		out = append(out, toWireAppointment(a))
	}
	return out
}
