package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "slotbook.v1.BookingService"

const (
	MethodCreateAppointment   = "/" + ServiceName + "/CreateAppointment"
	MethodListMyAppointments  = "/" + ServiceName + "/ListMyAppointments"
	MethodListAllAppointments = "/" + ServiceName + "/ListAllAppointments"
	MethodCheckAvailability   = "/" + ServiceName + "/CheckAvailability"
	MethodCancelAppointment   = "/" + ServiceName + "/CancelAppointment"
	MethodConfirmAppointment  = "/" + ServiceName + "/ConfirmAppointment"
)

type BookingServiceServer interface {
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	ListMyAppointments(context.Context, *ListMyAppointmentsRequest) (*ListAppointmentsResponse, error)
	ListAllAppointments(context.Context, *ListAllAppointmentsRequest) (*ListAppointmentsResponse, error)
	CheckAvailability(context.Context, *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error)
	CancelAppointment(context.Context, *CancelAppointmentRequest) (*AppointmentResponse, error)
	ConfirmAppointment(context.Context, *ConfirmAppointmentRequest) (*AppointmentResponse, error)
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodDesc.Handler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateAppointment",
			Handler:    unaryHandler(MethodCreateAppointment, BookingServiceServer.CreateAppointment),
		},
		{
			MethodName: "ListMyAppointments",
			Handler:    unaryHandler(MethodListMyAppointments, BookingServiceServer.ListMyAppointments),
		},
		{
			MethodName: "ListAllAppointments",
			Handler:    unaryHandler(MethodListAllAppointments, BookingServiceServer.ListAllAppointments),
		},
		{
			MethodName: "CheckAvailability",
			Handler:    unaryHandler(MethodCheckAvailability, BookingServiceServer.CheckAvailability),
		},
		{
			MethodName: "CancelAppointment",
			Handler:    unaryHandler(MethodCancelAppointment, BookingServiceServer.CancelAppointment),
		},
		{
			MethodName: "ConfirmAppointment",
			Handler:    unaryHandler(MethodConfirmAppointment, BookingServiceServer.ConfirmAppointment),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "slotbook/v1/booking.proto",
}

// BookingClient calls BookingService over the JSON codec.
type BookingClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingClient(cc grpc.ClientConnInterface) *BookingClient {
	return &BookingClient{cc: cc}
}

func (c *BookingClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *BookingClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.invoke(ctx, MethodCreateAppointment, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) ListMyAppointments(ctx context.Context, in *ListMyAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	out := new(ListAppointmentsResponse)
	if err := c.invoke(ctx, MethodListMyAppointments, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) ListAllAppointments(ctx context.Context, in *ListAllAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	out := new(ListAppointmentsResponse)
	if err := c.invoke(ctx, MethodListAllAppointments, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) CheckAvailability(ctx context.Context, in *CheckAvailabilityRequest, opts ...grpc.CallOption) (*CheckAvailabilityResponse, error) {
	out := new(CheckAvailabilityResponse)
	if err := c.invoke(ctx, MethodCheckAvailability, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) CancelAppointment(ctx context.Context, in *CancelAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.invoke(ctx, MethodCancelAppointment, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) ConfirmAppointment(ctx context.Context, in *ConfirmAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.invoke(ctx, MethodConfirmAppointment, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
