package grpc

import (
	"log/slog"
	"time"

	"google.golang.org/grpc"

	"slotbook/internal/auth"
)

// OpenMethods skip authentication.
var OpenMethods = map[string]bool{
	MethodCheckAvailability: true,
}

// LimitedMethods are the write paths subject to per-peer rate limiting.
var LimitedMethods = map[string]bool{
	MethodCreateAppointment:  true,
	MethodCancelAppointment:  true,
	MethodConfirmAppointment: true,
}

type ServerOptions struct {
	JWTSecret      string
	RequestTimeout time.Duration
	// Limiter and Metrics are optional.
	Limiter *RateLimiter
	Metrics requestObserver
}

// NewServer builds a grpc.Server with the interceptor chain and the booking
// service registered.
func NewServer(svc bookingService, log *slog.Logger, opts ServerOptions, extra ...grpc.ServerOption) *grpc.Server {
	chain := make([]grpc.UnaryServerInterceptor, 0, 4)
	if opts.Metrics != nil {
		chain = append(chain, MetricsInterceptor(opts.Metrics))
	}
	chain = append(chain, DefaultRequestTimeoutInterceptor(opts.RequestTimeout))
	if opts.Limiter != nil {
		chain = append(chain, opts.Limiter.Interceptor(LimitedMethods))
	}
	chain = append(chain, auth.UnaryInterceptor(opts.JWTSecret, OpenMethods))

	srvOpts := append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(chain...)}, extra...)
	s := grpc.NewServer(srvOpts...)
	RegisterBookingServiceServer(s, NewBookingServer(svc, log))
	return s
}
