package repository

import (
	"context"      // context carries request deadlines into DB operations
	"database/sql" // sql provides the ErrNoRows sentinel
	"errors"
	"fmt"

	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/model"
)

// TodoRepo runs the todo statements on a single connection.  It is cheap
// to construct and is meant to live for one request.
type TodoRepo struct {
	db      database.Querier
	dialect database.Dialect
}

// NewTodoRepo binds a repository to a connection and its dialect.
func NewTodoRepo(db database.Querier, dialect database.Dialect) *TodoRepo {
	return &TodoRepo{db: db, dialect: dialect}
}

// Ping runs a trivial query to confirm the connection is usable.
func (r *TodoRepo) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

// List returns every todo, newest id first.  The result is never nil.
func (r *TodoRepo) List(ctx context.Context) ([]model.Todo, error) {
	const q = "SELECT id, title, done FROM todos ORDER BY id DESC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Todo, 0)
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Done); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a todo with done=false and returns the stored row.  The
// title is stored as given; callers validate and trim it.
func (r *TodoRepo) Create(ctx context.Context, title string) (*model.Todo, error) {
	if r.dialect.Returning {
		q := r.dialect.Rebind("INSERT INTO todos (title, done) VALUES (?, FALSE) RETURNING id, title, done")
		t, err := r.scanOne(r.db.QueryRowContext(ctx, q, title))
		if errors.Is(err, ErrTodoNotFound) {
			return nil, ErrNoRowReturned
		}
		return t, err
	}

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind("INSERT INTO todos (title, done) VALUES (?, FALSE)"), title)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	t, err := r.Get(ctx, id)
	if errors.Is(err, ErrTodoNotFound) {
		return nil, ErrNoRowReturned
	}
	return t, err
}

// Get fetches a todo by id.  It returns ErrTodoNotFound if no row exists.
func (r *TodoRepo) Get(ctx context.Context, id int64) (*model.Todo, error) {
	q := r.dialect.Rebind("SELECT id, title, done FROM todos WHERE " + r.dialect.IDEquals())
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// Toggle flips the done flag and returns the updated row.  It returns
// ErrTodoNotFound if no row exists.
func (r *TodoRepo) Toggle(ctx context.Context, id int64) (*model.Todo, error) {
	if r.dialect.Returning {
		q := r.dialect.Rebind("UPDATE todos SET done = NOT done WHERE " + r.dialect.IDEquals() + " RETURNING id, title, done")
		return r.scanOne(r.db.QueryRowContext(ctx, q, id))
	}

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind("UPDATE todos SET done = NOT done WHERE "+r.dialect.IDEquals()), id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrTodoNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a todo.  It returns ErrTodoNotFound when nothing was deleted.
func (r *TodoRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind("DELETE FROM todos WHERE "+r.dialect.IDEquals()), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepo) scanOne(row *sql.Row) (*model.Todo, error) {
	var t model.Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Done); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return &t, nil
}
