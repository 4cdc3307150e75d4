package sqlstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Kerhoff/todoapi/internal/config"
	"github.com/Kerhoff/todoapi/internal/models"
	"github.com/Kerhoff/todoapi/internal/repository/sqlstore"
)

// openStores returns a database per available dialect. PostgreSQL is only
// exercised when TEST_DATABASE_URL points at a server.
func openStores(t *testing.T) map[string]*config.Database {
	t.Helper()
	logger, _ := test.NewNullLogger()

	urls := map[string]string{
		"sqlite": "sqlite://" + filepath.Join(t.TempDir(), "store.db"),
	}
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		urls["postgres"] = url
	}

	dbs := make(map[string]*config.Database, len(urls))
	for name, url := range urls {
		db, err := config.NewDatabase(url, config.DefaultPool, logger)
		if err != nil {
			t.Fatalf("%s: open database: %v", name, err)
		}
		if err := db.Migrate(); err != nil {
			t.Fatalf("%s: create schema: %v", name, err)
		}
		t.Cleanup(func() {
			if err := db.Drop(); err != nil {
				t.Errorf("%s: drop schema: %v", name, err)
			}
			_ = db.Close()
		})
		dbs[name] = db
	}
	return dbs
}

func TestTodoRepository(t *testing.T) {
	for name, db := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := sqlstore.NewTodoRepository(db.DB, db.Dialect)

			todos, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if todos == nil || len(todos) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", todos)
			}

			first, err := repo.Create(ctx, &models.Todo{Content: "first"})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if !first.IsPersisted() {
				t.Fatalf("expected id to be assigned, got %d", first.ID)
			}
			second, err := repo.Create(ctx, &models.Todo{Content: "second"})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if second.ID <= first.ID {
				t.Fatalf("ids not increasing: %d then %d", first.ID, second.ID)
			}

			got, err := repo.GetByID(ctx, first.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got == nil || *got != *first {
				t.Fatalf("get returned %#v, want %#v", got, first)
			}

			todos, err = repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(todos) != 2 || todos[0].Content != "first" || todos[1].Content != "second" {
				t.Fatalf("unexpected list: %#v", todos)
			}

			deleted, err := repo.Delete(ctx, first.ID)
			if err != nil || !deleted {
				t.Fatalf("delete existing: deleted=%v err=%v", deleted, err)
			}
			deleted, err = repo.Delete(ctx, first.ID)
			if err != nil || deleted {
				t.Fatalf("delete absent: deleted=%v err=%v", deleted, err)
			}

			got, err = repo.GetByID(ctx, first.ID)
			if err != nil {
				t.Fatalf("get deleted: %v", err)
			}
			if got != nil {
				t.Fatalf("expected nil for deleted todo, got %#v", got)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect sqlstore.Dialect
		in      string
		want    string
	}{
		{sqlstore.Postgres, `SELECT 1`, `SELECT 1`},
		{sqlstore.Postgres, `DELETE FROM todos WHERE id = ?`, `DELETE FROM todos WHERE id = $1`},
		{sqlstore.Postgres, `INSERT INTO t (a, b) VALUES (?, ?)`, `INSERT INTO t (a, b) VALUES ($1, $2)`},
		{sqlstore.SQLite, `INSERT INTO t (a, b) VALUES (?, ?)`, `INSERT INTO t (a, b) VALUES (?, ?)`},
	}
	for _, tt := range tests {
		if got := tt.dialect.Rebind(tt.in); got != tt.want {
			t.Errorf("%s.Rebind(%q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}
