package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/queue"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TodoEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.TodoEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type failingOpener struct{ err error }

func (f failingOpener) Open(context.Context) (*database.Session, error) { return nil, f.err }

func setupTestConnector(t *testing.T) *database.Connector {
	t.Helper()
	c, err := database.NewConnector(config.DBConfig{
		Driver:         "sqlite",
		Name:           filepath.Join(t.TempDir(), "todos.db"),
		ConnectTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, database.EnsureSchema(context.Background(), c))
	return c
}

func do(h echo.HandlerFunc, method, target, body, id string) *httptest.ResponseRecorder {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	_ = h(c)
	return rec
}

func decodeTodo(t *testing.T, rec *httptest.ResponseRecorder) model.Todo {
	t.Helper()
	var todo model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
	return todo
}

func TestCreateTodo(t *testing.T) {
	pub := &recordingPublisher{}
	h := NewTodoHandler(setupTestConnector(t), pub)

	rec := do(h.Create, http.MethodPost, "/todos", `{"title":"  buy milk  "}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	todo := decodeTodo(t, rec)
	assert.Greater(t, todo.ID, int64(0))
	assert.Equal(t, "buy milk", todo.Title)
	assert.False(t, todo.Done)

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.TodoCreated, pub.events[0].Type)
	assert.Equal(t, todo.ID, pub.events[0].TodoID)
}

func TestCreateTodoRejectsBlankTitle(t *testing.T) {
	h := NewTodoHandler(setupTestConnector(t), nil)

	for _, body := range []string{`{"title":""}`, `{"title":"   \t "}`, `{}`} {
		rec := do(h.Create, http.MethodPost, "/todos", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "title is required")
	}

	rec := do(h.Create, http.MethodPost, "/todos", `{"title":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTodosNewestFirst(t *testing.T) {
	h := NewTodoHandler(setupTestConnector(t), nil)

	rec := do(h.List, http.MethodGet, "/todos", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, title := range []string{"first", "second", "third"} {
		require.Equal(t, http.StatusCreated, do(h.Create, http.MethodPost, "/todos", `{"title":"`+title+`"}`, "").Code)
	}

	rec = do(h.List, http.MethodGet, "/todos", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var todos []model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	require.Len(t, todos, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{todos[0].Title, todos[1].Title, todos[2].Title})
}

func TestToggleTodo(t *testing.T) {
	pub := &recordingPublisher{}
	h := NewTodoHandler(setupTestConnector(t), pub)
	created := decodeTodo(t, do(h.Create, http.MethodPost, "/todos", `{"title":"flip me"}`, ""))
	id := jsonID(created.ID)

	rec := do(h.Toggle, http.MethodPatch, "/todos/"+id, "", id)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decodeTodo(t, rec)
	assert.Equal(t, created.ID, toggled.ID)
	assert.True(t, toggled.Done)

	rec = do(h.Toggle, http.MethodPatch, "/todos/"+id, "", id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeTodo(t, rec).Done)

	require.Len(t, pub.events, 3)
	assert.Equal(t, queue.TodoToggled, pub.events[2].Type)
}

func TestToggleAndDeleteMissing(t *testing.T) {
	h := NewTodoHandler(setupTestConnector(t), nil)

	assert.Equal(t, http.StatusNotFound, do(h.Toggle, http.MethodPatch, "/todos/42", "", "42").Code)
	assert.Equal(t, http.StatusNotFound, do(h.Delete, http.MethodDelete, "/todos/42", "", "42").Code)
	assert.Equal(t, http.StatusBadRequest, do(h.Toggle, http.MethodPatch, "/todos/abc", "", "abc").Code)
	assert.Equal(t, http.StatusBadRequest, do(h.Delete, http.MethodDelete, "/todos/abc", "", "abc").Code)
}

func TestDeleteTodo(t *testing.T) {
	pub := &recordingPublisher{}
	h := NewTodoHandler(setupTestConnector(t), pub)
	created := decodeTodo(t, do(h.Create, http.MethodPost, "/todos", `{"title":"gone soon"}`, ""))
	id := jsonID(created.ID)

	rec := do(h.Delete, http.MethodDelete, "/todos/"+id, "", id)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(h.Toggle, http.MethodPatch, "/todos/"+id, "", id).Code)
	assert.Equal(t, http.StatusNotFound, do(h.Delete, http.MethodDelete, "/todos/"+id, "", id).Code)

	require.Len(t, pub.events, 2)
	assert.Equal(t, queue.TodoDeleted, pub.events[1].Type)
}

func TestTodoEndpointsReportDatabaseFailure(t *testing.T) {
	h := NewTodoHandler(failingOpener{err: errors.New("connection refused")}, nil)

	rec := do(h.List, http.MethodGet, "/todos", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "connection refused")

	assert.Equal(t, http.StatusInternalServerError, do(h.Toggle, http.MethodPatch, "/todos/1", "", "1").Code)
	assert.Equal(t, http.StatusBadRequest, do(h.Create, http.MethodPost, "/todos", `{"title":" "}`, "").Code)
}

func TestCreateTodoInsertFailure(t *testing.T) {
	// Connects fine, but the todos table was never created.
	c, err := database.NewConnector(config.DBConfig{
		Driver:         "sqlite",
		Name:           filepath.Join(t.TempDir(), "empty.db"),
		ConnectTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	pub := &recordingPublisher{}
	h := NewTodoHandler(c, pub)

	rec := do(h.Create, http.MethodPost, "/todos", `{"title":"never stored"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to insert record"}`, rec.Body.String())
	assert.Empty(t, pub.events)
}

func TestToggleLargeIDIsNotFound(t *testing.T) {
	h := NewTodoHandler(setupTestConnector(t), nil)

	assert.Equal(t, http.StatusNotFound, do(h.Toggle, http.MethodPatch, "/todos/3000000000", "", "3000000000").Code)
	assert.Equal(t, http.StatusNotFound, do(h.Delete, http.MethodDelete, "/todos/3000000000", "", "3000000000").Code)
}

func TestNewTodoHandlerPanicsWithoutOpener(t *testing.T) {
	assert.Panics(t, func() { NewTodoHandler(nil, nil) })
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
