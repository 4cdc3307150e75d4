package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Kerhoff/todoapi/internal/models"
	"github.com/Kerhoff/todoapi/internal/repository"
)

type todoRepository struct {
	db      repository.Querier
	dialect Dialect
}

// NewTodoRepository returns a TodoRepository issuing queries through db,
// which may be a pool, a dedicated connection or a transaction.
func NewTodoRepository(db repository.Querier, dialect Dialect) repository.TodoRepository {
	return &todoRepository{db: db, dialect: dialect}
}

func (r *todoRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := r.dialect.Rebind(`INSERT INTO todos (content) VALUES (?) RETURNING id`)
	err := r.db.QueryRowContext(ctx, query, todo.Content).Scan(&todo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

func (r *todoRepository) GetByID(ctx context.Context, id int64) (*models.Todo, error) {
	query := r.dialect.Rebind(`SELECT id, content FROM todos WHERE id = ?`)
	todo := &models.Todo{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&todo.ID, &todo.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

func (r *todoRepository) List(ctx context.Context) ([]*models.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, content FROM todos ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		todo := &models.Todo{}
		if err := rows.Scan(&todo.ID, &todo.Content); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

func (r *todoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM todos WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
