// Package grpc serves the notes API over gRPC with bearer access tokens.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"google.golang.org/grpc"
)

type Authenticator interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, binder services.SessionBinder, username, password string) (*models.Identity, error)
	IssueToken(identity *models.Identity) (string, error)
	IdentityFromToken(token string) (*models.Identity, error)
}

type NoteManager interface {
	ListNotes(ctx context.Context, identity *models.Identity) ([]models.Note, error)
	AddNote(ctx context.Context, identity *models.Identity, content string) (int64, error)
	EditNote(ctx context.Context, identity *models.Identity, noteID int64, content string) error
	DeleteNote(ctx context.Context, identity *models.Identity, noteID int64) error
	ExportNotes(ctx context.Context, identity *models.Identity) (string, error)
}

type GRPCServer struct {
	address string
	auth    Authenticator
	notes   NoteManager
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, auth Authenticator, notes NoteManager) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    auth,
		notes:   notes,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	pb.RegisterNotesServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
