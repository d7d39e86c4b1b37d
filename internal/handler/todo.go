package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/todo-api/internal/model"
    "github.com/iliyamo/todo-api/internal/queue"
    "github.com/iliyamo/todo-api/internal/repository"
    "github.com/iliyamo/todo-api/internal/service"
)

// TodoHandler serves the /todos endpoints.  Every request opens its own
// database connection through DB.
type TodoHandler struct {
    DB     SessionOpener
    Events service.EventPublisher
}

// NewTodoHandler panics if db is nil.  A nil publisher disables events.
func NewTodoHandler(db SessionOpener, events service.EventPublisher) *TodoHandler {
    if db == nil {
        panic("nil session opener passed to NewTodoHandler")
    }
    if events == nil {
        events = service.NopPublisher{}
    }
    return &TodoHandler{DB: db, Events: events}
}

// List handles GET /todos and returns all todos, newest first.
func (h *TodoHandler) List(c echo.Context) error {
    return withRepo(c, h.DB, func(repo *repository.TodoRepo) error {
        todos, err := repo.List(c.Request().Context())
        if err != nil {
            return internalError(c, err)
        }
        return c.JSON(http.StatusOK, todos)
    })
}

// Create handles POST /todos.  The title is trimmed and must not be empty.
func (h *TodoHandler) Create(c echo.Context) error {
    var body struct {
        Title string `json:"title"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    title := strings.TrimSpace(body.Title)
    if title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
    }
    return withRepo(c, h.DB, func(repo *repository.TodoRepo) error {
        todo, err := repo.Create(c.Request().Context(), title)
        if err != nil {
            c.Logger().Errorf("insert todo: %v", err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to insert record"})
        }
        h.publish(c, queue.TodoCreated, todo.ID, todo)
        return c.JSON(http.StatusCreated, todo)
    })
}

// Toggle handles PATCH /todos/:id and flips the done flag.
func (h *TodoHandler) Toggle(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    return withRepo(c, h.DB, func(repo *repository.TodoRepo) error {
        todo, err := repo.Toggle(c.Request().Context(), id)
        if errors.Is(err, repository.ErrTodoNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
        }
        if err != nil {
            return internalError(c, err)
        }
        h.publish(c, queue.TodoToggled, todo.ID, todo)
        return c.JSON(http.StatusOK, todo)
    })
}

// Delete handles DELETE /todos/:id.  Success is 204 with no body.
func (h *TodoHandler) Delete(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    return withRepo(c, h.DB, func(repo *repository.TodoRepo) error {
        err := repo.Delete(c.Request().Context(), id)
        if errors.Is(err, repository.ErrTodoNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
        }
        if err != nil {
            return internalError(c, err)
        }
        h.publish(c, queue.TodoDeleted, id, nil)
        return c.NoContent(http.StatusNoContent)
    })
}

// publish is best effort; the publisher logs its own failures.
func (h *TodoHandler) publish(c echo.Context, kind string, id int64, t *model.Todo) {
    _ = h.Events.Publish(c.Request().Context(), queue.NewTodoEvent(kind, id, t))
}
