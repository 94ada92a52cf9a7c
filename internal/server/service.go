package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "kin.v1.KinService"

const (
	methodListPersons  = "ListPersons"
	methodShowPerson   = "ShowPerson"
	methodCreatePerson = "CreatePerson"
	methodAncestors    = "Ancestors"
)

// KinServiceServer is the server API for kin.v1.KinService. Requests and
// responses are google.protobuf.Struct messages; field names are listed on
// each Server method.
type KinServiceServer interface {
	ListPersons(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ShowPerson(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreatePerson(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ancestors(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterKinServiceServer registers srv on s.
func RegisterKinServiceServer(s grpc.ServiceRegistrar, srv KinServiceServer) {
	s.RegisterService(&KinServiceDesc, srv)
}

// KinServiceDesc describes kin.v1.KinService for grpc.Server.
var KinServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*KinServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodListPersons, Handler: unaryHandler(methodListPersons, KinServiceServer.ListPersons)},
		{MethodName: methodShowPerson, Handler: unaryHandler(methodShowPerson, KinServiceServer.ShowPerson)},
		{MethodName: methodCreatePerson, Handler: unaryHandler(methodCreatePerson, KinServiceServer.CreatePerson)},
		{MethodName: methodAncestors, Handler: unaryHandler(methodAncestors, KinServiceServer.Ancestors)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kin/v1/kin.proto",
}

type unaryMethod func(KinServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(KinServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(KinServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
