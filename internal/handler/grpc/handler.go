package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/TomasB/iplocate/internal/data"
	"github.com/TomasB/iplocate/internal/ipv4"
	locationv1 "github.com/TomasB/iplocate/pkg/location/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Handler implements the gRPC LocationService.
type Handler struct {
	locationv1.UnimplementedLocationServiceServer
	lookup data.LocationLookup
}

// NewHandler creates a new gRPC handler with the given LocationLookup.
func NewHandler(lookup data.LocationLookup) *Handler {
	return &Handler{lookup: lookup}
}

// Locate resolves a dotted-quad IPv4 address to its location.
func (h *Handler) Locate(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "ip is required")
	}

	id, err := ipv4.ParseID(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	loc, err := h.lookup.LookupLocation(id)
	if errors.Is(err, data.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "Resource not found.")
	}
	if err != nil {
		slog.Error("location lookup failed", "ip", req.GetValue(), "error", err)
		return nil, status.Error(codes.Internal, "lookup failed")
	}

	return locationv1.NewLocateResponse(loc.Country, loc.CountryCode, loc.City), nil
}

// LoggingInterceptor logs every unary call with its status code and duration.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		attrs := []any{
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch code {
		case codes.OK:
			logger.Info("rpc completed", attrs...)
		case codes.InvalidArgument, codes.NotFound:
			logger.Warn("rpc completed", attrs...)
		default:
			logger.Error("rpc completed", append(attrs, "error", err)...)
		}
		return resp, err
	}
}
