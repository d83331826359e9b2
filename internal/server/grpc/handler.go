package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// tokenSession binds an identity by minting an access token for it.
type tokenSession struct {
	issue func(*models.Identity) (string, error)
	token string
}

func (t *tokenSession) Bind(identity *models.Identity) error {
	tok, err := t.issue(identity)
	if err != nil {
		return err
	}
	t.token = tok
	return nil
}

func (t *tokenSession) Clear() error {
	t.token = ""
	return nil
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrDuplicateUsername):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFoundOrForbidden):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrExportDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func invalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error) {
	username, err := pb.String(req, pb.FieldUsername)
	if err != nil {
		return nil, invalidArgument(err)
	}
	password, err := pb.String(req, pb.FieldPassword)
	if err != nil {
		return nil, invalidArgument(err)
	}

	id, err := s.auth.Register(ctx, username, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", id)
	return wrapperspb.Int64(id), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	username, err := pb.String(req, pb.FieldUsername)
	if err != nil {
		return nil, invalidArgument(err)
	}
	password, err := pb.String(req, pb.FieldPassword)
	if err != nil {
		return nil, invalidArgument(err)
	}

	sess := &tokenSession{issue: s.auth.IssueToken}
	if _, err := s.auth.Login(ctx, sess, username, password); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return wrapperspb.String(sess.token), nil
}

func (s *GRPCServer) ListNotes(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	notes, err := s.notes.ListNotes(ctx, identityFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := make([]pb.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, pb.Note{ID: n.ID, Content: n.Content})
	}
	return pb.EncodeNotes(out), nil
}

func (s *GRPCServer) AddNote(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error) {
	content, err := pb.String(req, pb.FieldContent)
	if err != nil {
		return nil, invalidArgument(err)
	}

	id, err := s.notes.AddNote(ctx, identityFrom(ctx), content)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.Int64(id), nil
}

func (s *GRPCServer) EditNote(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, err := pb.Int64(req, pb.FieldID)
	if err != nil {
		return nil, invalidArgument(err)
	}
	content, err := pb.String(req, pb.FieldContent)
	if err != nil {
		return nil, invalidArgument(err)
	}

	if err := s.notes.EditNote(ctx, identityFrom(ctx), id, content); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) DeleteNote(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, err := pb.Int64(req, pb.FieldID)
	if err != nil {
		return nil, invalidArgument(err)
	}

	if err := s.notes.DeleteNote(ctx, identityFrom(ctx), id); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ExportNotes(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	url, err := s.notes.ExportNotes(ctx, identityFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.String(url), nil
}
