package api

import (
	"errors"
	"html/template"
	"time"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/metrics"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries everything NewHandler needs besides the database.
type Options struct {
	SessionSecret  string
	CookieSecure   bool
	SessionTTL     time.Duration
	RememberTTL    time.Duration
	MaxUploadBytes int64

	// SessionStore defaults to the sessions table when nil.
	SessionStore services.SessionStore
	PhotoStorage services.PhotoStorage

	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	cookieSecure bool
	logger       *zap.Logger
	metrics      *metrics.Metrics
	templates    map[string]*template.Template
	loginLimiter *attemptLimiter
	now          func() time.Time

	repositories  *db.Repositories
	authService   *services.AuthService
	sessions      *services.SessionService
	profiles      *services.ProfileService
	fermentations *services.FermentationService
	photos        *services.PhotoService
}

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.SessionSecret == "" {
		return nil, errors.New("session secret is required")
	}
	if options.PhotoStorage == nil {
		return nil, errors.New("photo storage is required")
	}
	if options.SessionTTL <= 0 {
		options.SessionTTL = 24 * time.Hour
	}
	if options.RememberTTL <= 0 {
		options.RememberTTL = 120 * time.Hour
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		db:           database,
		secretKey:    []byte(options.SessionSecret),
		cookieSecure: options.CookieSecure,
		logger:       options.Logger,
		metrics:      options.Metrics,
		templates:    templates,
		loginLimiter: newAttemptLimiter(options.LoginAttemptLimit, options.LoginAttemptWindow),
		now:          time.Now,
	}
	return handler.withDependencies(options), nil
}
