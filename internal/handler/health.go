package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/todo-api/internal/repository"
)

// SystemHandler serves the endpoints that are not about todos.
type SystemHandler struct {
    DB      SessionOpener
    Name    string
    Version string
}

// NewSystemHandler panics if db is nil.
func NewSystemHandler(db SessionOpener, name, version string) *SystemHandler {
    if db == nil {
        panic("nil session opener passed to NewSystemHandler")
    }
    return &SystemHandler{DB: db, Name: name, Version: version}
}

// Health handles GET /health.  The service and the database are reported
// separately and the status is always 200, so a database outage does not
// mark the service itself as down.
func (h *SystemHandler) Health(c echo.Context) error {
    ctx := c.Request().Context()
    dbStatus := "ok"
    s, err := h.DB.Open(ctx)
    if err == nil {
        err = repository.NewTodoRepo(s.Conn(), s.Dialect()).Ping(ctx)
        _ = s.Close()
    }
    if err != nil {
        dbStatus = "error: " + err.Error()
    }
    return c.JSON(http.StatusOK, echo.Map{"service": "ok", "database": dbStatus})
}

// Root handles GET / with the service name and where to check its health.
func (h *SystemHandler) Root(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "message": h.Name,
        "version": h.Version,
        "health":  "/health",
    })
}
