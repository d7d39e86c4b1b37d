package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/todo-api/internal/handler" // handlers that implement the endpoints
)

// RegisterRoutes registers the service-level endpoints: the root banner and
// the health check used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo, s *handler.SystemHandler) {
	e.GET("/", s.Root)
	e.GET("/health", s.Health)
}

// RegisterTodos registers the CRUD endpoints under /todos.  Any middleware
// passed in (rate limiting) applies to this group only, so health checks
// are never throttled.
func RegisterTodos(e *echo.Echo, t *handler.TodoHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/todos", mw...)
	g.GET("", t.List)
	g.POST("", t.Create)
	g.PATCH("/:id", t.Toggle)
	g.DELETE("/:id", t.Delete)
}
