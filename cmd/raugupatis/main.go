package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/raugupatis/raugupatis-log/internal/api"
	"github.com/raugupatis/raugupatis-log/internal/cli"
	"github.com/raugupatis/raugupatis-log/internal/config"
	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/logging"
	"github.com/raugupatis/raugupatis-log/internal/metrics"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"github.com/raugupatis/raugupatis-log/internal/sessionstore"
	"github.com/raugupatis/raugupatis-log/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	appName         = "Raugupatis Log"
	shutdownTimeout = 10 * time.Second
	// Multipart framing and form fields on top of the photo itself.
	uploadOverheadBytes = 1 << 20
	csrfCookieName      = "raugupatis_csrf"
	csrfTokenLifetime   = 24 * time.Hour
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "raugupatis: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	configPath := flags.String("config", "", "path to config.toml")
	email := flags.String("email", "", "account email (create-admin, reset-password)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer func() {
		_ = log.Sync()
	}()

	switch command {
	case "serve":
		return serve(cfg, log)
	case "create-admin":
		database, err := openDatabase(cfg, log)
		if err != nil {
			return err
		}
		return cli.RunCreateAdminCommand(database, *email, cli.TerminalPrompt(os.Stdin, os.Stdout), os.Stdout)
	case "reset-password":
		database, err := openDatabase(cfg, log)
		if err != nil {
			return err
		}
		return cli.RunResetPasswordCommand(database, *email, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q (want serve, create-admin or reset-password)", command)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormLogger := logging.NewGormLogger(log.Named("gorm"), logging.GormLevel(cfg.Database.LogLevel))
	database, err := db.OpenSQLite(cfg.Database.Path, db.WithLogger(gormLogger))
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return database, nil
}

func serve(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal("database init failed", zap.String("path", cfg.Database.Path), zap.Error(err))
	}

	repositories := db.NewRepositories(database)
	if removed, err := repositories.Sessions.DeleteExpired(ctx, time.Now()); err != nil {
		log.Warn("purge expired sessions", zap.Error(err))
	} else if removed > 0 {
		log.Info("purged expired sessions", zap.Int64("count", removed))
	}

	sessionStore, closeStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	photoStorage, err := storage.New(ctx, *cfg, log.Named("storage"))
	if err != nil {
		return fmt.Errorf("photo storage init failed: %w", err)
	}

	var collectors *metrics.Metrics
	if cfg.Metrics.Enabled {
		collectors = metrics.New()
	}

	handler, err := api.NewHandler(database, api.Options{
		SessionSecret:  cfg.Session.Secret,
		CookieSecure:   cfg.Session.CookieSecure,
		SessionTTL:     cfg.Session.TTL,
		RememberTTL:    cfg.Session.RememberTTL,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		SessionStore:   sessionStore,
		PhotoStorage:   photoStorage,
		Logger:         log.Named("api"),
		Metrics:        collectors,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp(cfg, handler, collectors)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("listening",
		zap.String("address", cfg.Server.Address),
		zap.String("environment", cfg.App.Environment),
		zap.String("db", cfg.Database.Path),
		zap.String("sessions", cfg.Session.Store),
		zap.String("storage", cfg.Storage.Backend),
	)
	if err := app.Listen(cfg.Server.Address); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openSessionStore returns nil for the SQL store, which the handler builds
// from the database itself.
func openSessionStore(ctx context.Context, cfg *config.Config) (services.SessionStore, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStoreSQL:
		return nil, func() {}, nil
	case config.SessionStoreRedis:
		store, err := sessionstore.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis session store init failed: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, errors.New("unknown session store " + cfg.Session.Store)
	}
}

func newApp(cfg *config.Config, handler *api.Handler, collectors *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit(cfg.Storage.MaxUploadBytes),
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(accessLogConfig(os.Stdout)))
	if collectors != nil {
		app.Use(collectors.Middleware())
		app.Get("/metrics", collectors.Handler())
	}
	app.Use(compress.New())
	if origins := corsAllowOrigins(cfg.HTTP.CORSAllowOrigins); origins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowCredentials: true,
		}))
	}
	app.Use(csrf.New(csrfConfig(cfg.Session.CookieSecure)))

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

// csrfConfig protects every unsafe method with a double-submit token. Pages
// read the token from a meta tag and send it back in the X-Csrf-Token header.
func csrfConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "header:" + csrf.HeaderName,
		CookieName:     csrfCookieName,
		CookieSameSite: "Lax",
		CookieHTTPOnly: false,
		CookieSecure:   cookieSecure,
		Expiration:     csrfTokenLifetime,
		ContextKey:     api.CSRFContextKey,
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid csrf token"})
		},
	}
}

func bodyLimit(maxUploadBytes int64) int {
	if maxUploadBytes <= 0 {
		maxUploadBytes = services.DefaultMaxPhotoBytes
	}
	return int(maxUploadBytes) + uploadOverheadBytes
}

func accessLogConfig(output io.Writer) logger.Config {
	return logger.Config{
		Format:     "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		TimeFormat: time.RFC3339,
		Output:     output,
	}
}

// corsAllowOrigins joins the configured origins. A wildcard is dropped
// because the session cookie needs credentials.
func corsAllowOrigins(origins []string) string {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		allowed = append(allowed, origin)
	}
	return strings.Join(allowed, ",")
}
