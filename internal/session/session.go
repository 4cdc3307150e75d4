// Package session hands each request its own database connection and
// guarantees the connection goes back to the pool when the request ends.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/todoapi/internal/metrics"
	"github.com/Kerhoff/todoapi/internal/models"
	"github.com/Kerhoff/todoapi/internal/repository"
	"github.com/Kerhoff/todoapi/internal/repository/sqlstore"
)

// ErrClosed is returned when a closed session is used.
var ErrClosed = errors.New("session is closed")

// Provider opens sessions on a connection pool.
type Provider struct {
	db      *sql.DB
	dialect sqlstore.Dialect
	metrics *metrics.Metrics
}

// NewProvider creates a Provider. m may be nil.
func NewProvider(db *sql.DB, dialect sqlstore.Dialect, m *metrics.Metrics) *Provider {
	return &Provider{db: db, dialect: dialect, metrics: m}
}

// Session is a dedicated connection, live for one request. It is not safe
// for concurrent use.
type Session struct {
	conn    *sql.Conn
	tx      *sql.Tx
	dialect sqlstore.Dialect
	metrics *metrics.Metrics
}

// Open reserves a connection from the pool.
func (p *Provider) Open(ctx context.Context) (*Session, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	p.metrics.SessionOpened()
	return &Session{conn: conn, dialect: p.dialect, metrics: p.metrics}, nil
}

// Todos returns a repository bound to the session, running inside the
// current transaction when one is open. After Close every call on the
// returned repository fails with ErrClosed.
func (s *Session) Todos() repository.TodoRepository {
	if s.conn == nil {
		return closedRepository{}
	}
	if s.tx != nil {
		return sqlstore.NewTodoRepository(s.tx, s.dialect)
	}
	return sqlstore.NewTodoRepository(s.conn, s.dialect)
}

// InTx runs fn in a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, including when fn panics.
func (s *Session) InTx(ctx context.Context, fn func(todos repository.TodoRepository) error) (err error) {
	if s.conn == nil {
		return ErrClosed
	}
	if s.tx != nil {
		return fmt.Errorf("transaction already in progress")
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx

	committed := false
	defer func() {
		s.tx = nil
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = multierror.Append(err, fmt.Errorf("failed to roll back: %w", rbErr))
		}
	}()

	if err := fn(sqlstore.NewTodoRepository(tx, s.dialect)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	committed = true
	return nil
}

// Close returns the connection to the pool. It is safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	var result error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			result = multierror.Append(result, fmt.Errorf("failed to roll back: %w", err))
		}
		s.tx = nil
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		result = multierror.Append(result, fmt.Errorf("failed to release connection: %w", err))
	}
	s.conn = nil
	s.metrics.SessionClosed()
	return result
}

// closedRepository is handed out by a session that has been closed.
type closedRepository struct{}

func (closedRepository) Create(context.Context, *models.Todo) (*models.Todo, error) {
	return nil, ErrClosed
}

func (closedRepository) GetByID(context.Context, int64) (*models.Todo, error) {
	return nil, ErrClosed
}

func (closedRepository) List(context.Context) ([]*models.Todo, error) {
	return nil, ErrClosed
}

func (closedRepository) Delete(context.Context, int64) (bool, error) {
	return false, ErrClosed
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// Middleware opens a session before next runs and closes it afterwards,
// whether next returns normally or panics.
func Middleware(p *Provider, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := p.Open(r.Context())
			if err != nil {
				logger.WithError(err).Error("failed to open database session")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Service Unavailable"})
				return
			}
			defer func() {
				if err := s.Close(); err != nil {
					logger.WithError(err).Warn("failed to close database session")
				}
			}()

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
		})
	}
}
