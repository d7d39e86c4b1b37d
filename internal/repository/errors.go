// Package repository holds the SQL for the todos table.  Handlers create a
// repository per request on top of a freshly opened connection and translate
// the sentinel errors below into HTTP status codes.
package repository

import "errors"

// ErrTodoNotFound is returned when no row matches the requested id.
// Handlers should translate this into an HTTP 404 response.
var ErrTodoNotFound = errors.New("todo not found")

// ErrNoRowReturned is returned when an insert succeeds but the created row
// cannot be read back.  Handlers should translate this into an HTTP 500.
var ErrNoRowReturned = errors.New("no row returned")
