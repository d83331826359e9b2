// Package proto describes the gophnotes.NotesService gRPC API. Messages are
// well-known protobuf types, so no generated code is needed.
package proto

import (
	"context"

	"google.golang.org/grpc"
	protobuf "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "gophnotes.NotesService"

const (
	MethodRegister    = "/" + ServiceName + "/Register"
	MethodLogin       = "/" + ServiceName + "/Login"
	MethodListNotes   = "/" + ServiceName + "/ListNotes"
	MethodAddNote     = "/" + ServiceName + "/AddNote"
	MethodEditNote    = "/" + ServiceName + "/EditNote"
	MethodDeleteNote  = "/" + ServiceName + "/DeleteNote"
	MethodExportNotes = "/" + ServiceName + "/ExportNotes"
)

// NotesServer is implemented by the server side of the API.
type NotesServer interface {
	Register(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error)
	Login(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error)
	ListNotes(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	AddNote(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error)
	EditNote(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	DeleteNote(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	ExportNotes(ctx context.Context, req *emptypb.Empty) (*wrapperspb.StringValue, error)
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }
func newEmpty() *emptypb.Empty    { return &emptypb.Empty{} }

func unary[Req, Resp protobuf.Message](name string, newReq func() Req, call func(NotesServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(NotesServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotesServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", newStruct, NotesServer.Register),
		unary("Login", newStruct, NotesServer.Login),
		unary("ListNotes", newEmpty, NotesServer.ListNotes),
		unary("AddNote", newStruct, NotesServer.AddNote),
		unary("EditNote", newStruct, NotesServer.EditNote),
		unary("DeleteNote", newStruct, NotesServer.DeleteNote),
		unary("ExportNotes", newEmpty, NotesServer.ExportNotes),
	},
	Metadata: "gophnotes/notes.proto",
}

func RegisterNotesServer(s grpc.ServiceRegistrar, srv NotesServer) {
	s.RegisterService(&ServiceDesc, srv)
}
