package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCClient struct {
	conn *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *GRPCClient) setToken(t string) {
	c.mu.Lock()
	c.accessToken = t
	c.mu.Unlock()
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if t := c.token(); t != "" {
		ctx = withAccessToken(ctx, t)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a lazy connection to endpoint. Extra dial options
// are appended after the defaults.
func NewGRPCClient(endpoint string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) IsLoggedIn() bool {
	return c.token() != ""
}

func (c *GRPCClient) Register(ctx context.Context, username, password string) (int64, error) {
	out := &wrapperspb.Int64Value{}
	if err := c.conn.Invoke(ctx, pb.MethodRegister, pb.CredentialsRequest(username, password), out); err != nil {
		return 0, mapError(err)
	}
	return out.GetValue(), nil
}

func (c *GRPCClient) Login(ctx context.Context, username, password string) error {
	out := &wrapperspb.StringValue{}
	if err := c.conn.Invoke(ctx, pb.MethodLogin, pb.CredentialsRequest(username, password), out); err != nil {
		return mapError(err)
	}
	c.setToken(out.GetValue())
	return nil
}

// Logout forgets the access token. Tokens are stateless, so the server is
// not contacted.
func (c *GRPCClient) Logout() {
	c.setToken("")
}

func (c *GRPCClient) ListNotes(ctx context.Context) ([]pb.Note, error) {
	out := &structpb.ListValue{}
	if err := c.conn.Invoke(ctx, pb.MethodListNotes, &emptypb.Empty{}, out); err != nil {
		return nil, mapError(err)
	}
	return pb.DecodeNotes(out)
}

func (c *GRPCClient) AddNote(ctx context.Context, content string) (int64, error) {
	out := &wrapperspb.Int64Value{}
	if err := c.conn.Invoke(ctx, pb.MethodAddNote, pb.ContentRequest(content), out); err != nil {
		return 0, mapError(err)
	}
	return out.GetValue(), nil
}

func (c *GRPCClient) EditNote(ctx context.Context, id int64, content string) error {
	if err := c.conn.Invoke(ctx, pb.MethodEditNote, pb.EditRequest(id, content), &emptypb.Empty{}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) DeleteNote(ctx context.Context, id int64) error {
	if err := c.conn.Invoke(ctx, pb.MethodDeleteNote, pb.NoteRequest(id), &emptypb.Empty{}); err != nil {
		return mapError(err)
	}
	return nil
}

// ExportNotes returns a presigned download URL for the caller's notes.
func (c *GRPCClient) ExportNotes(ctx context.Context) (string, error) {
	out := &wrapperspb.StringValue{}
	if err := c.conn.Invoke(ctx, pb.MethodExportNotes, &emptypb.Empty{}, out); err != nil {
		return "", mapError(err)
	}
	return out.GetValue(), nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.NotFound:
		return ErrNotFound
	case codes.FailedPrecondition:
		return ErrExportDisabled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
