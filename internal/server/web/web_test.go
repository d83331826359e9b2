package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/migrations/sqlitetest"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, base string) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return read(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return read(b.t, resp)
}

func read(t *testing.T, resp *http.Response) (int, string, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func creds(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

type fakeExporter struct{}

func (fakeExporter) Export(ctx context.Context, userID int64, notes []models.Note) (string, error) {
	return fmt.Sprintf("https://s3.local/exports/%d.json", userID), nil
}

func newServer(t *testing.T, exporter services.Exporter) *httptest.Server {
	t.Helper()
	db := sqlitetest.New(t)
	rm := repomanager.NewSQLiteRepositoryManager()
	cfg := &config.Config{SecretKey: "k", AccessTokenValidityDuration: time.Hour, BcryptCost: bcrypt.MinCost}

	auth := services.NewAuthService(db, rm, cfg, logging.Nop{})
	notes := services.NewNoteService(db, rm, nil, exporter, logging.Nop{})

	h, err := NewHandler(auth, notes, NewCookieStore("test-secret", 3600), exporter != nil, logging.Nop{})
	require.NoError(t, err)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestWeb_AnonymousIsSentToLogin(t *testing.T) {
	srv := newServer(t, nil)
	b := newBrowser(t, srv.URL)

	for _, path := range []string{"/", "/edit/1", "/delete/1", "/export"} {
		status, loc, _ := b.get(path)
		assert.Equal(t, http.StatusSeeOther, status, path)
		assert.Equal(t, "/login", loc, path)
	}

	status, loc, _ := b.post("/add", url.Values{"content": {"x"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", loc)
}

func TestWeb_RegisterLoginAndNotes(t *testing.T) {
	srv := newServer(t, nil)
	b := newBrowser(t, srv.URL)

	status, loc, _ := b.post("/register", creds("bob", "pw"))
	require.Equal(t, http.StatusSeeOther, status)
	require.Equal(t, "/login", loc)

	status, _, body := b.get("/login")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Registration successful! Please login.")

	_, _, body = b.get("/login")
	assert.NotContains(t, body, "Registration successful!", "flash is shown once")

	status, loc, _ = b.post("/login", creds("bob", "pw"))
	require.Equal(t, http.StatusSeeOther, status)
	require.Equal(t, "/", loc)

	status, _, _ = b.post("/add", url.Values{"content": {"buy milk"}})
	require.Equal(t, http.StatusSeeOther, status)
	_, _, _ = b.post("/add", url.Values{"content": {"   "}})

	status, _, body = b.get("/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Your Notes")
	assert.Contains(t, body, "bob")
	assert.Contains(t, body, "buy milk")
	assert.Equal(t, 1, strings.Count(body, `href="/edit/`), "blank note was ignored")

	status, _, body = b.get("/edit/1")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "buy milk")

	status, loc, _ = b.post("/edit/1", url.Values{"content": {"buy oat milk"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", loc)

	_, _, body = b.get("/")
	assert.Contains(t, body, "buy oat milk")

	status, loc, _ = b.get("/delete/1")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", loc)

	_, _, body = b.get("/")
	assert.NotContains(t, body, "buy oat milk")

	status, loc, _ = b.get("/logout")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", loc)

	status, loc, _ = b.get("/")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", loc)

	status, _, _ = b.get("/logout")
	assert.Equal(t, http.StatusSeeOther, status, "logout is idempotent")
}

func TestWeb_FormErrors(t *testing.T) {
	srv := newServer(t, nil)
	b := newBrowser(t, srv.URL)

	_, _, _ = b.post("/register", creds("alice", "pw1"))

	status, _, body := b.post("/register", creds("alice", "pw2"))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Username already exists. Please choose another.")

	status, _, body = b.post("/register", creds("", ""))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Username and password are required.")

	status, _, body = b.post("/login", creds("alice", "pw2"))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Invalid username or password")

	status, _, body = b.post("/login", creds("nobody", "pw1"))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Invalid username or password")

	status, _, _ = b.post("/login", creds("alice", "pw1"))
	assert.Equal(t, http.StatusSeeOther, status, "first password still works")
}

func TestWeb_OtherUsersNotesAreOffLimits(t *testing.T) {
	srv := newServer(t, nil)
	alice := newBrowser(t, srv.URL)
	mallory := newBrowser(t, srv.URL)

	_, _, _ = alice.post("/register", creds("alice", "a"))
	_, _, _ = alice.post("/login", creds("alice", "a"))
	_, _, _ = alice.post("/add", url.Values{"content": {"secret plan"}})

	_, _, _ = mallory.post("/register", creds("mallory", "m"))
	_, _, _ = mallory.post("/login", creds("mallory", "m"))

	_, _, body := mallory.get("/")
	assert.NotContains(t, body, "secret plan")

	status, loc, _ := mallory.get("/edit/1")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", loc)
	_, _, body = mallory.get("/")
	assert.Contains(t, body, "Note not found or unauthorized.")

	_, _, _ = mallory.post("/edit/1", url.Values{"content": {"hijacked"}})
	status, loc, _ = mallory.get("/delete/1")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", loc)

	_, _, body = alice.get("/")
	assert.Contains(t, body, "secret plan")
	assert.NotContains(t, body, "hijacked")
}

func TestWeb_Export(t *testing.T) {
	b := newBrowser(t, newServer(t, nil).URL)
	_, _, _ = b.post("/register", creds("alice", "a"))
	_, _, _ = b.post("/login", creds("alice", "a"))

	status, _, _ := b.get("/export")
	assert.Equal(t, http.StatusNotFound, status)

	b = newBrowser(t, newServer(t, fakeExporter{}).URL)
	_, _, _ = b.post("/register", creds("alice", "a"))
	_, _, _ = b.post("/login", creds("alice", "a"))

	_, _, body := b.get("/")
	assert.Contains(t, body, `href="/export"`)

	status, loc, _ := b.get("/export")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "https://s3.local/exports/1.json", loc)
}

func TestWeb_UnknownRoutes(t *testing.T) {
	b := newBrowser(t, newServer(t, nil).URL)

	status, _, _ := b.get("/edit/abc")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = b.get("/add")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

type failingNotes struct{ NoteManager }

func (failingNotes) ListNotes(context.Context, *models.Identity) ([]models.Note, error) {
	return nil, fmt.Errorf("error listing notes: %w", errors.New("db error: disk full"))
}

type stubAuth struct{ Authenticator }

func (stubAuth) Login(ctx context.Context, b services.SessionBinder, username, password string) (*models.Identity, error) {
	id := &models.Identity{UserID: 1, Username: username}
	return id, b.Bind(id)
}

func TestWeb_StoreFailureIs500(t *testing.T) {
	h, err := NewHandler(stubAuth{}, failingNotes{}, NewCookieStore("s", 60), false, logging.Nop{})
	require.NoError(t, err)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	b := newBrowser(t, srv.URL)
	_, _, _ = b.post("/login", creds("alice", "x"))

	status, _, body := b.get("/")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body, "disk full")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrUnauthenticated, http.StatusUnauthorized},
		{common.ErrInvalidCredentials, http.StatusUnauthorized},
		{common.ErrDuplicateUsername, http.StatusConflict},
		{fmt.Errorf("%w: empty", common.ErrValidation), http.StatusBadRequest},
		{common.ErrNotFoundOrForbidden, http.StatusNotFound},
		{common.ErrExportDisabled, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestLogRequests_SetsRequestID(t *testing.T) {
	h, err := NewHandler(stubAuth{}, failingNotes{}, NewCookieStore("s", 60), false, logging.Nop{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get("X-Request-Id"), 16)
}
