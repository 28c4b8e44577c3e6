package factory

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/rpgroster-go/internal/config"
	"github.com/mcoot/rpgroster-go/internal/dependencies/clock"
	"github.com/mcoot/rpgroster-go/internal/dependencies/ids"
	"github.com/mcoot/rpgroster-go/internal/services/auth"
	"github.com/mcoot/rpgroster-go/internal/services/character"
	"github.com/mcoot/rpgroster-go/internal/services/progression"
	"github.com/mcoot/rpgroster-go/internal/storage"
	"github.com/mcoot/rpgroster-go/internal/storage/memory"
	redisstorage "github.com/mcoot/rpgroster-go/internal/storage/redis"
	sqlstorage "github.com/mcoot/rpgroster-go/internal/storage/sql"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeSQL    = "sql"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	Leaderboard storage.Leaderboard

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Services
	AuthService      *auth.Service
	CharacterService *character.Service

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// Zero fields fall back to auth.DefaultConfig(); an empty secret is generated
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// SQLConfig holds database settings (required if StorageType is "sql")
	SQLConfig *sqlstorage.Config
	// RedisConfig holds Redis connection settings for the leaderboard (optional)
	// If nil, the leaderboard is kept in memory
	RedisConfig *redisstorage.Config
}

// ConfigFrom maps loaded service configuration onto factory configuration
func ConfigFrom(cfg *config.Config, logger *slog.Logger) Config {
	fc := Config{
		Logger: logger,
		AuthConfig: auth.Config{
			Secret:   []byte(cfg.Auth.Secret),
			TokenTTL: cfg.Auth.TokenTTL,
		},
		StorageType: StorageTypeMemory,
	}
	if cfg.Database.Driver != config.DriverMemory {
		fc.StorageType = StorageTypeSQL
		fc.SQLConfig = &sqlstorage.Config{
			Driver:          cfg.Database.Driver,
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}
	}
	if cfg.Redis.URL != "" {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if err := progression.CheckTables(); err != nil {
		return nil, fmt.Errorf("progression tables incomplete: %w", err)
	}

	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeSQL:
		if cfg.SQLConfig == nil {
			return nil, errors.New("SQLConfig required when StorageType is sql")
		}
		sqlStore, err := sqlstorage.Open(*cfg.SQLConfig, logger)
		if err != nil {
			return nil, err
		}
		store = sqlStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'sql'")
	}

	var leaderboard storage.Leaderboard = memory.NewLeaderboard()
	var closers []io.Closer
	if cfg.RedisConfig != nil {
		redisLeaderboard, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		leaderboard = redisLeaderboard
		closers = append(closers, redisLeaderboard)
	}

	// Tokens signed with a generated secret do not survive a restart
	authCfg := cfg.AuthConfig
	if len(authCfg.Secret) == 0 {
		authCfg.Secret = make([]byte, 32)
		_, _ = rand.Read(authCfg.Secret)
		logger.Warn("no token secret configured, using an ephemeral one")
	}

	app := newWithDependencies(store, leaderboard, clock.New(), ids.New(), authCfg, logger)
	app.closers = append(app.closers, closers...)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	leaderboard storage.Leaderboard,
	clk clock.Clock,
	idGen ids.Generator,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	authService := auth.New(store, clk, idGen, logger, authCfg)
	characterService := character.New(store, leaderboard, clk, idGen, logger)

	return &App{
		Storage:          store,
		Leaderboard:      leaderboard,
		Clock:            clk,
		IDs:              idGen,
		AuthService:      authService,
		CharacterService: characterService,
		closers:          []io.Closer{store},
	}
}

// Close releases the storage and leaderboard connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
