package web

import (
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/gorilla/sessions"
)

const (
	keyUserID   = "user_id"
	keyUsername = "username"

	flashSuccess = "success"
	flashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// cookieSession binds an identity to the browser session cookie for the
// duration of one request.
type cookieSession struct {
	w http.ResponseWriter
	r *http.Request
	s *sessions.Session
}

func newCookieSession(store sessions.Store, w http.ResponseWriter, r *http.Request, name string) *cookieSession {
	// a cookie that fails to decode yields a fresh session
	s, _ := store.Get(r, name)
	return &cookieSession{w: w, r: r, s: s}
}

func (c *cookieSession) Bind(identity *models.Identity) error {
	c.s.Values[keyUserID] = identity.UserID
	c.s.Values[keyUsername] = identity.Username
	return c.s.Save(c.r, c.w)
}

func (c *cookieSession) Clear() error {
	c.s.Values = make(map[interface{}]interface{})
	return c.s.Save(c.r, c.w)
}

// Identity returns the bound identity or nil.
func (c *cookieSession) Identity() *models.Identity {
	uid, ok := c.s.Values[keyUserID].(int64)
	if !ok || uid == 0 {
		return nil
	}
	username, _ := c.s.Values[keyUsername].(string)
	return &models.Identity{UserID: uid, Username: username}
}

func (c *cookieSession) AddFlash(category, message string) {
	c.s.AddFlash(message, category)
}

// Flashes drains pending messages. The session must be saved afterwards for
// the removal to stick.
func (c *cookieSession) Flashes() []Flash {
	var out []Flash
	for _, category := range []string{flashSuccess, flashDanger} {
		for _, v := range c.s.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Category: category, Message: msg})
			}
		}
	}
	return out
}

func (c *cookieSession) Save() error {
	return c.s.Save(c.r, c.w)
}

// NewCookieStore returns a store for signed session cookies.
func NewCookieStore(secret string, maxAgeSeconds int) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
