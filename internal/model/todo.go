package model

// Todo is a single task with a title and a completion flag.  It
// corresponds to a row in the `todos` table and is also the JSON shape
// returned by every todo endpoint.
//
// Fields:
//  ID    – primary key, assigned by the database and never changed.
//  Title – trimmed, non-empty text set at creation.
//  Done  – completion flag; false on creation, flipped by toggle.
type Todo struct {
    ID    int64  `json:"id"`    // todos.id
    Title string `json:"title"` // todos.title
    Done  bool   `json:"done"`  // todos.done
}
