package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/todoapi/internal/metrics"
	"github.com/Kerhoff/todoapi/internal/repository"
	"github.com/Kerhoff/todoapi/internal/service"
	"github.com/Kerhoff/todoapi/internal/session"
)

// Server provides the HTTP API.
type Server struct {
	svc      *service.Service
	sessions *session.Provider
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates a Server, registers all routes, and returns it.
// m may be nil.
func NewServer(svc *service.Service, sessions *session.Provider, logger *logrus.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
		metrics:  m,
		mux:      http.NewServeMux(),
	}
	s.routes()
	s.handler = RequestIDMiddleware(LoggingMiddleware(logger)(RecoveryMiddleware(logger)(s.mux)))
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

// route binds one method and path pattern to a handler. Handlers with
// withSession set run inside a database session.
type route struct {
	method      string
	pattern     string
	handler     http.HandlerFunc
	withSession bool
}

func (s *Server) routeTable() []route {
	return []route{
		{http.MethodGet, "/{$}", s.handleRoot, false},
		{http.MethodPost, "/todos/{$}", s.handleCreateTodo, true},
		{http.MethodGet, "/todos/{$}", s.handleGetTodos, true},
		{http.MethodGet, "/todos/{id}", s.handleGetTodo, true},
		{http.MethodDelete, "/todos/{id}", s.handleDeleteTodo, true},
	}
}

func (s *Server) routes() {
	withSession := session.Middleware(s.sessions, s.logger)
	for _, rt := range s.routeTable() {
		var h http.Handler = rt.handler
		if rt.withSession {
			h = withSession(h)
		}
		s.mux.Handle(rt.method+" "+rt.pattern, s.instrument(rt.method, rt.pattern, h))
	}

	// ServeMux would answer /todos with a 301, which clients replay as GET.
	s.mux.HandleFunc("/todos", s.handleTodosRedirect)
	s.mux.HandleFunc("/", s.handleNotFound)
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

// respondJSON always writes a body; a nil value is encoded as JSON null.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode JSON response")
	}
}

func (s *Server) respondDetail(w http.ResponseWriter, status int) {
	s.respondJSON(w, status, map[string]string{"detail": http.StatusText(status)})
}

// respondError maps err onto a response: validation failures become 422,
// oversized bodies 413, anything else is logged and reported as 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *repository.ValidationError
	if errors.As(err, &verr) {
		s.respondJSON(w, http.StatusUnprocessableEntity, validationBody(verr))
		return
	}
	if errors.Is(err, errBodyTooLarge) {
		s.respondDetail(w, http.StatusRequestEntityTooLarge)
		return
	}

	s.logger.WithError(err).WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": GetRequestID(r.Context()),
	}).Error("request failed")
	s.respondDetail(w, http.StatusInternalServerError)
}

// requestSession returns the session opened by session.Middleware.
func (s *Server) requestSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		s.logger.WithField("path", r.URL.Path).Error("handler invoked without a database session")
		s.respondDetail(w, http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// handleTodosRedirect sends /todos to /todos/ keeping the method and body.
func (s *Server) handleTodosRedirect(w http.ResponseWriter, r *http.Request) {
	target := "/todos/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondDetail(w, http.StatusNotFound)
}
