// Package web serves the browser interface: server-rendered pages backed by
// a signed session cookie.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

const (
	msgRegistered         = "Registration successful! Please login."
	msgDuplicateUsername  = "Username already exists. Please choose another."
	msgMissingCredentials = "Username and password are required."
	msgInvalidCredentials = "Invalid username or password"
	msgNoteNotFound       = "Note not found or unauthorized."
)

type Authenticator interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, binder services.SessionBinder, username, password string) (*models.Identity, error)
	Logout(ctx context.Context, binder services.SessionBinder) error
}

type NoteManager interface {
	ListNotes(ctx context.Context, identity *models.Identity) ([]models.Note, error)
	AddNote(ctx context.Context, identity *models.Identity, content string) (int64, error)
	GetNote(ctx context.Context, identity *models.Identity, noteID int64) (*models.Note, error)
	EditNote(ctx context.Context, identity *models.Identity, noteID int64, content string) error
	DeleteNote(ctx context.Context, identity *models.Identity, noteID int64) error
	ExportNotes(ctx context.Context, identity *models.Identity) (string, error)
}

type Handler struct {
	auth          Authenticator
	notes         NoteManager
	store         sessions.Store
	pages         pages
	logger        logging.Logger
	exportEnabled bool
}

func NewHandler(auth Authenticator, notes NoteManager, store sessions.Store, exportEnabled bool, l logging.Logger) (*Handler, error) {
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		auth:          auth,
		notes:         notes,
		store:         store,
		pages:         p,
		logger:        l.With("module", "web"),
		exportEnabled: exportEnabled,
	}, nil
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *cookieSession {
	return newCookieSession(h.store, w, r, common.SessionName)
}

// page drains pending flashes into data, saves the session and renders.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, sess *cookieSession, name string, data PageData) {
	data.Flashes = append(sess.Flashes(), data.Flashes...)
	if err := sess.Save(); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.pages.render(w, http.StatusOK, name, data); err != nil {
		h.logger.Error(r.Context(), "render failed", "page", name, "error", err)
	}
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (h *Handler) flashAndRedirect(w http.ResponseWriter, r *http.Request, sess *cookieSession, category, msg, to string) {
	sess.AddFlash(category, msg)
	if err := sess.Save(); err != nil {
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, to)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

// authenticated resolves the caller or redirects to the login page.
func (h *Handler) authenticated(w http.ResponseWriter, r *http.Request) (*cookieSession, *models.Identity, bool) {
	sess := h.session(w, r)
	identity := sess.Identity()
	if identity == nil {
		h.redirect(w, r, "/login")
		return nil, nil, false
	}
	return sess, identity, true
}

func noteID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	sess, identity, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	notes, err := h.notes.ListNotes(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.page(w, r, sess, "index", PageData{
		Username:      identity.Username,
		Notes:         notes,
		ExportEnabled: h.exportEnabled,
	})
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.session(w, r), "register", PageData{})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	_, err := h.auth.Register(r.Context(), username, password)
	switch {
	case err == nil:
		h.flashAndRedirect(w, r, sess, flashSuccess, msgRegistered, "/login")
	case errors.Is(err, common.ErrDuplicateUsername):
		h.page(w, r, sess, "register", PageData{Username: username, Flashes: []Flash{{flashDanger, msgDuplicateUsername}}})
	case errors.Is(err, common.ErrValidation):
		h.page(w, r, sess, "register", PageData{Username: username, Flashes: []Flash{{flashDanger, msgMissingCredentials}}})
	default:
		h.fail(w, r, err)
	}
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.session(w, r), "login", PageData{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	username := r.PostFormValue("username")

	_, err := h.auth.Login(r.Context(), sess, username, r.PostFormValue("password"))
	switch {
	case err == nil:
		h.redirect(w, r, "/")
	case errors.Is(err, common.ErrInvalidCredentials):
		h.page(w, r, sess, "login", PageData{Username: username, Flashes: []Flash{{flashDanger, msgInvalidCredentials}}})
	default:
		h.fail(w, r, err)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), h.session(w, r)); err != nil {
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, "/login")
}

// AddNote ignores blank content.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	_, identity, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	_, err := h.notes.AddNote(r.Context(), identity, r.PostFormValue("content"))
	if err != nil && !errors.Is(err, common.ErrValidation) {
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, "/")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	sess, identity, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	id, err := noteID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	note, err := h.notes.GetNote(r.Context(), identity, id)
	if errors.Is(err, common.ErrNotFoundOrForbidden) {
		h.flashAndRedirect(w, r, sess, flashDanger, msgNoteNotFound, "/")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.page(w, r, sess, "edit", PageData{Username: identity.Username, NoteID: note.ID, Content: note.Content})
}

func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request) {
	sess, identity, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	id, err := noteID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.notes.EditNote(r.Context(), identity, id, r.PostFormValue("content"))
	if errors.Is(err, common.ErrNotFoundOrForbidden) {
		h.flashAndRedirect(w, r, sess, flashDanger, msgNoteNotFound, "/")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, "/")
}

// DeleteNote redirects home whether or not the note was the caller's.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	_, identity, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	id, err := noteID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.notes.DeleteNote(r.Context(), identity, id)
	if err != nil && !errors.Is(err, common.ErrNotFoundOrForbidden) {
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, "/")
}

// Export redirects to a short-lived download link for the caller's notes.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	_, identity, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	url, err := h.notes.ExportNotes(r.Context(), identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, url)
}
