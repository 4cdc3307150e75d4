package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/todoapi/internal/metrics"
	"github.com/Kerhoff/todoapi/internal/models"
	"github.com/Kerhoff/todoapi/internal/repository"
	"github.com/Kerhoff/todoapi/internal/session"
)

// errNoID means the database accepted an insert without assigning an id.
var errNoID = errors.New("database assigned no id")

// Service is the business logic layer for todos. Every method works on the
// caller's session; the service holds no database state of its own.
type Service struct {
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// New creates a new Service. m may be nil.
func New(logger *logrus.Logger, m *metrics.Metrics) *Service {
	return &Service{logger: logger, metrics: m}
}

// CreateTodo persists a todo with the given content and returns it with
// the id assigned by the database. The write is committed before returning.
func (s *Service) CreateTodo(ctx context.Context, sess *session.Session, content string) (*models.Todo, error) {
	var created *models.Todo
	err := sess.InTx(ctx, func(todos repository.TodoRepository) error {
		var err error
		created, err = todos.Create(ctx, &models.Todo{Content: content})
		if err != nil {
			return err
		}
		if !created.IsPersisted() {
			return errNoID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.TodoCreated()
	s.logger.WithField("todo_id", created.ID).Debug("Created todo")
	return created, nil
}

// ListTodos returns all todos in creation order.
func (s *Service) ListTodos(ctx context.Context, sess *session.Session) ([]*models.Todo, error) {
	todos, err := sess.Todos().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// GetTodo returns the todo with the given id, or nil if there is none.
func (s *Service) GetTodo(ctx context.Context, sess *session.Session, id int64) (*models.Todo, error) {
	todo, err := sess.Todos().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get todo (id=%d): %w", id, err)
	}
	return todo, nil
}

// DeleteTodo removes the todo if it exists. Deleting an absent id is not an
// error; the returned flag reports whether a row was removed.
func (s *Service) DeleteTodo(ctx context.Context, sess *session.Session, id int64) (bool, error) {
	var deleted bool
	err := sess.InTx(ctx, func(todos repository.TodoRepository) error {
		var err error
		deleted, err = todos.Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete todo (id=%d): %w", id, err)
	}

	if deleted {
		s.metrics.TodoDeleted()
		s.logger.WithField("todo_id", id).Debug("Deleted todo")
	}
	return deleted, nil
}
