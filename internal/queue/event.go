// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/todo-api/internal/model"
)

// Event types published after a todo statement succeeded.
const (
    TodoCreated = "todo.created"
    TodoToggled = "todo.toggled"
    TodoDeleted = "todo.deleted"
)

// TodoEvent describes one change to the todos table.  Title and Done are
// empty for deletions since the row is gone by the time it is published.
type TodoEvent struct {
    Type       string `json:"type"`
    TodoID     int64  `json:"todo_id"`
    Title      string `json:"title,omitempty"`
    Done       bool   `json:"done"`
    OccurredAt string `json:"occurred_at"`
}

// NewTodoEvent stamps an event with the current UTC time.  t may be nil.
func NewTodoEvent(kind string, id int64, t *model.Todo) TodoEvent {
    ev := TodoEvent{Type: kind, TodoID: id, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
    if t != nil {
        ev.Title = t.Title
        ev.Done = t.Done
    }
    return ev
}
