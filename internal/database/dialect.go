package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the few places where the supported SQL engines disagree:
// driver name, placeholder syntax, RETURNING support and the todos DDL.
type Dialect struct {
	Name        string // postgres, mysql or sqlite
	DriverName  string // name registered with database/sql
	Numbered    bool   // $1, $2 placeholders instead of ?
	Returning   bool   // INSERT/UPDATE ... RETURNING is available
	IDParam     string // placeholder compared against todos.id
	CreateTable string
}

var dialects = map[string]Dialect{
	"postgres": {
		Name:       "postgres",
		DriverName: "pgx",
		Numbered:   true,
		Returning:  true,
		// id is SERIAL (int4); a bare $1 would be inferred as int4 and ids
		// beyond its range would fail to encode instead of matching nothing.
		IDParam: "?::bigint",
		CreateTable: `CREATE TABLE IF NOT EXISTS todos (
    id SERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    done BOOLEAN NOT NULL DEFAULT FALSE
)`,
	},
	"mysql": {
		Name:       "mysql",
		DriverName: "mysql",
		CreateTable: `CREATE TABLE IF NOT EXISTS todos (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    title TEXT NOT NULL,
    done BOOLEAN NOT NULL DEFAULT FALSE
)`,
	},
	"sqlite": {
		Name:       "sqlite",
		DriverName: "sqlite",
		Returning:  true,
		CreateTable: `CREATE TABLE IF NOT EXISTS todos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    done BOOLEAN NOT NULL DEFAULT FALSE
)`,
	},
}

// LookupDialect resolves a DB_DRIVER value.  "postgresql" and "pgx" are
// accepted as aliases for postgres, "sqlite3" for sqlite.
func LookupDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return dialects["postgres"], nil
	case "mysql":
		return dialects["mysql"], nil
	case "sqlite", "sqlite3":
		return dialects["sqlite"], nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
}

// IDEquals is the "id = ?" predicate with the dialect's parameter type.
func (d Dialect) IDEquals() string {
	if d.IDParam == "" {
		return "id = ?"
	}
	return "id = " + d.IDParam
}

// Rebind rewrites ? placeholders into the dialect's syntax.  Queries in this
// module never contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
