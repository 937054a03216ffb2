// Package locationv1 defines the iplocate.location.v1.LocationService gRPC
// service described in proto/location/v1/location.proto. Requests and
// responses are protobuf well-known types, so no generated message code is
// needed.
package locationv1

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "iplocate.location.v1.LocationService"

	LocationService_Locate_FullMethodName = "/" + ServiceName + "/Locate"
)

// Response field names.
const (
	FieldCountry     = "country"
	FieldCountryCode = "countryCode"
	FieldCity        = "city"
)

// LocationServiceServer is the server API for LocationService.
type LocationServiceServer interface {
	Locate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// UnimplementedLocationServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedLocationServiceServer struct{}

func (UnimplementedLocationServiceServer) Locate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Locate not implemented")
}

// RegisterLocationServiceServer registers srv on s.
func RegisterLocationServiceServer(s grpc.ServiceRegistrar, srv LocationServiceServer) {
	s.RegisterService(&LocationService_ServiceDesc, srv)
}

func _LocationService_Locate_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LocationServiceServer).Locate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LocationService_Locate_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LocationServiceServer).Locate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// LocationService_ServiceDesc is the grpc.ServiceDesc for LocationService.
var LocationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LocationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Locate",
			Handler:    _LocationService_Locate_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "location/v1/location.proto",
}

// LocationServiceClient is the client API for LocationService.
type LocationServiceClient interface {
	Locate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type locationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLocationServiceClient returns a client for LocationService on cc.
func NewLocationServiceClient(cc grpc.ClientConnInterface) LocationServiceClient {
	return &locationServiceClient{cc}
}

func (c *locationServiceClient) Locate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LocationService_Locate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Location is the decoded form of a Locate response.
type Location struct {
	Country     string
	CountryCode string
	City        string
}

// NewLocateResponse builds a Locate response struct.
func NewLocateResponse(country, countryCode, city string) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldCountry:     structpb.NewStringValue(country),
			FieldCountryCode: structpb.NewStringValue(countryCode),
			FieldCity:        structpb.NewStringValue(city),
		},
	}
}

// DecodeLocateResponse extracts the location fields from a Locate response.
func DecodeLocateResponse(s *structpb.Struct) (Location, error) {
	var loc Location
	for name, dst := range map[string]*string{
		FieldCountry:     &loc.Country,
		FieldCountryCode: &loc.CountryCode,
		FieldCity:        &loc.City,
	} {
		v, ok := s.GetFields()[name]
		if !ok {
			return Location{}, fmt.Errorf("response is missing field %q", name)
		}
		sv, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return Location{}, fmt.Errorf("response field %q is not a string", name)
		}
		*dst = sv.StringValue
	}
	return loc, nil
}
