package web

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/gorilla/mux"
)

func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/register", h.RegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.LoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)
	r.HandleFunc("/add", h.AddNote).Methods(http.MethodPost)
	r.HandleFunc("/edit/{id:[0-9]+}", h.EditForm).Methods(http.MethodGet)
	r.HandleFunc("/edit/{id:[0-9]+}", h.EditNote).Methods(http.MethodPost)
	r.HandleFunc("/delete/{id:[0-9]+}", h.DeleteNote).Methods(http.MethodGet)
	r.HandleFunc("/export", h.Export).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID, _ := common.MakeRandHexString(8)
		w.Header().Set("X-Request-Id", reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Info(r.Context(), "http request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
