// Package cli implements the interactive GophNotes command-line client.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/netx"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
)

// NotesAPI is the server surface the CLI drives; *client.GRPCClient
// implements it.
type NotesAPI interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) error
	Logout()
	IsLoggedIn() bool
	ListNotes(ctx context.Context) ([]pb.Note, error)
	AddNote(ctx context.Context, content string) (int64, error)
	EditNote(ctx context.Context, id int64, content string) error
	DeleteNote(ctx context.Context, id int64) error
	ExportNotes(ctx context.Context) (string, error)
}

type App struct {
	config   *config.Config
	api      NotesAPI
	reader   *bufio.Reader
	out      io.Writer
	userName string
	download func(ctx context.Context, url string) ([]byte, error)
	closer   io.Closer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	a := newApp(c, apiClient, os.Stdin, os.Stdout)
	a.closer = apiClient
	return a, nil
}

func newApp(c *config.Config, api NotesAPI, in io.Reader, out io.Writer) *App {
	return &App{
		config:   c,
		api:      api,
		reader:   bufio.NewReader(in),
		out:      out,
		download: netx.DownloadFromURL,
	}
}

func (a *App) Run(ctx context.Context) {
	if a.closer != nil {
		defer a.closer.Close()
	}
	a.printf("Welcome to GophNotes CLI (type 'help' for commands)\n")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.api.IsLoggedIn()
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// callCtx bounds one API call by the configured timeout.
func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
