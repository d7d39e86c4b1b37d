package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/todo-api/internal/config"
)

var tracer = otel.Tracer("github.com/iliyamo/todo-api/internal/database")

// Querier is the subset of *sql.Conn / *sql.DB / *sql.Tx used by repositories.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Connector opens one dedicated connection per caller.  It holds no open
// handles itself, so it is safe to share between goroutines.
type Connector struct {
	dialect Dialect
	dsn     string
	timeout time.Duration
}

// NewConnector validates the driver and builds the DSN once.
func NewConnector(cfg config.DBConfig) (*Connector, error) {
	d, err := LookupDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Connector{dialect: d, dsn: buildDSN(d, cfg, timeout), timeout: timeout}, nil
}

// Dialect returns the SQL dialect of the configured driver.
func (c *Connector) Dialect() Dialect { return c.dialect }

// Open establishes a new connection bounded by the connect timeout.  The
// caller owns the returned Session and must Close it.
func (c *Connector) Open(ctx context.Context) (*Session, error) {
	ctx, span := tracer.Start(ctx, "database.Open")
	defer span.End()
	span.SetAttributes(attribute.String("db.system", c.dialect.Name))

	db, err := sql.Open(c.dialect.DriverName, c.dsn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open")
		return nil, fmt.Errorf("open %s: %w", c.dialect.Name, err)
	}
	// One physical connection, never reused after Close.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	connectCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	conn, err := db.Conn(connectCtx)
	if err == nil {
		err = conn.PingContext(connectCtx)
		if err != nil {
			_ = conn.Close()
		}
	}
	if err != nil {
		_ = db.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "connect")
		return nil, fmt.Errorf("connect %s: %w", c.dialect.Name, err)
	}
	return &Session{db: db, conn: conn, dialect: c.dialect}, nil
}

// Session is a single request-scoped connection.
type Session struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect Dialect
}

// Conn exposes the underlying connection for running statements.
func (s *Session) Conn() Querier { return s.conn }

// Dialect returns the dialect the session was opened with.
func (s *Session) Dialect() Dialect { return s.dialect }

// Close releases the connection and its private handle.  It is safe to call
// more than once.
func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.conn.Close()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	s.db = nil
	return err
}

// EnsureSchema creates the todos table when it does not exist yet.
func EnsureSchema(ctx context.Context, c *Connector) error {
	s, err := c.Open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	if _, err := s.conn.ExecContext(ctx, c.dialect.CreateTable); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}

func buildDSN(d Dialect, cfg config.DBConfig, timeout time.Duration) string {
	switch d.Name {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Pass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Timeout = timeout
		mc.TLSConfig = mysqlTLS(cfg.SSLMode)
		return mc.FormatDSN()
	case "sqlite":
		return cfg.Name + "?_pragma=busy_timeout(" + strconv.FormatInt(timeout.Milliseconds(), 10) + ")"
	default:
		secs := int(timeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		q := url.Values{}
		if cfg.SSLMode != "" {
			q.Set("sslmode", cfg.SSLMode)
		}
		q.Set("connect_timeout", strconv.Itoa(secs))
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Pass),
			Host:     net.JoinHostPort(cfg.Host, cfg.Port),
			Path:     "/" + cfg.Name,
			RawQuery: q.Encode(),
		}
		return u.String()
	}
}

// mysqlTLS maps libpq style sslmode values onto the mysql driver's tls option.
func mysqlTLS(mode string) string {
	switch mode {
	case "", "disable":
		return "false"
	case "allow", "prefer":
		return "preferred"
	case "require":
		return "skip-verify"
	default:
		return "true"
	}
}
