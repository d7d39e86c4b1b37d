package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/todo-api/internal/model"
)

func TestNewTodoEvent(t *testing.T) {
    ev := NewTodoEvent(TodoToggled, 7, &model.Todo{ID: 7, Title: "ship it", Done: true})
    assert.Equal(t, TodoToggled, ev.Type)
    assert.Equal(t, int64(7), ev.TodoID)
    assert.Equal(t, "ship it", ev.Title)
    assert.True(t, ev.Done)
    assert.NotEmpty(t, ev.OccurredAt)

    del := NewTodoEvent(TodoDeleted, 7, nil)
    assert.Empty(t, del.Title)
}

func TestHandleMessageAppendsLines(t *testing.T) {
    logPath := filepath.Join(t.TempDir(), "logs", "todo-events.log")

    created, _ := json.Marshal(TodoEvent{Type: TodoCreated, TodoID: 1, Title: "a", OccurredAt: "2024-01-01T00:00:00Z"})
    deleted, _ := json.Marshal(TodoEvent{Type: TodoDeleted, TodoID: 1, OccurredAt: "2024-01-01T00:01:00Z"})
    require.NoError(t, handleMessage(created, logPath))
    require.NoError(t, handleMessage(deleted, logPath))

    data, err := os.ReadFile(logPath)
    require.NoError(t, err)
    lines := strings.Split(strings.TrimSpace(string(data)), "\n")
    require.Len(t, lines, 2)
    assert.Equal(t, `[2024-01-01T00:00:00Z] todo.created | todo_id=1 | title="a" | done=false`, lines[0])
    assert.Equal(t, `[2024-01-01T00:01:00Z] todo.deleted | todo_id=1`, lines[1])
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
    logPath := filepath.Join(t.TempDir(), "events.log")
    assert.Error(t, handleMessage([]byte("not json"), logPath))
    assert.Error(t, handleMessage([]byte(`{"todo_id":1}`), logPath))
}
