package main // Entry point package

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/handler"
	"github.com/iliyamo/todo-api/internal/middleware"
	"github.com/iliyamo/todo-api/internal/router"
	"github.com/iliyamo/todo-api/internal/service"
	"github.com/iliyamo/todo-api/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Env)
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	conn, err := database.NewConnector(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	// Not fatal: the service keeps running and /health reports the database.
	if err := database.EnsureSchema(ctx, conn); err != nil {
		log.Printf("[startup] DB init error: %v", err)
	}

	var rdb *redis.Client
	if cfg.RateLimit.Enabled {
		if rdb = config.NewRedisClient(); rdb == nil {
			log.Printf("[startup] redis unreachable, rate limiting disabled")
		} else {
			defer rdb.Close()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	e.Use(echomw.Logger())
	e.Use(middleware.Telemetry())

	router.RegisterRoutes(e, handler.NewSystemHandler(conn, cfg.AppName, cfg.Version))
	router.RegisterTodos(e,
		handler.NewTodoHandler(conn, service.NewPublisher(cfg.Events)),
		middleware.NewTokenBucket(cfg.RateLimit, rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, conn.Dialect().Name)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
}
