package handler // handler defines http handlers

import (
    "context"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/todo-api/internal/database"
    "github.com/iliyamo/todo-api/internal/repository"
)

// SessionOpener opens a connection scoped to a single request.
// *database.Connector satisfies it.
type SessionOpener interface {
    Open(ctx context.Context) (*database.Session, error)
}

// withRepo opens a connection, hands a repository bound to it to fn and
// closes the connection afterwards, whatever fn returned.
func withRepo(c echo.Context, db SessionOpener, fn func(*repository.TodoRepo) error) error {
    ctx := c.Request().Context()
    s, err := db.Open(ctx)
    if err != nil {
        return internalError(c, err)
    }
    defer func() {
        if cerr := s.Close(); cerr != nil {
            c.Logger().Warnf("close db session: %v", cerr)
        }
    }()
    return fn(repository.NewTodoRepo(s.Conn(), s.Dialect()))
}

// internalError logs the cause and answers with a generic 500.
func internalError(c echo.Context, err error) error {
    c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (int64, bool) {
    id, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil {
        return 0, false
    }
    return id, true
}
