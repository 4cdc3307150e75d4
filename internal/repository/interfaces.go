package repository

import (
	"context"
	"database/sql"

	"github.com/Kerhoff/todoapi/internal/models"
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx used by the
// repositories, so one implementation can run inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TodoRepository defines the interface for todo data operations
type TodoRepository interface {
	// Create inserts the todo and fills in the id assigned by the database.
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	// GetByID returns nil, nil when no todo has the given id.
	GetByID(ctx context.Context, id int64) (*models.Todo, error)
	// List returns every todo in id order.
	List(ctx context.Context) ([]*models.Todo, error)
	// Delete removes the todo and reports whether a row existed.
	Delete(ctx context.Context, id int64) (bool, error)
}
