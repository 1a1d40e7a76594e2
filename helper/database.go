package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DefaultQueryTimeout bounds every single storage call.
const DefaultQueryTimeout = 10 * time.Second

// DatabaseConfiguration holds the connection parameters for the Postgres
// instance backing the service.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the database configuration from the
// environment (a .env file is loaded first if present).
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("WEBMAP_DB_HOST"),
		Port:     os.Getenv("WEBMAP_DB_PORT"),
		Database: os.Getenv("WEBMAP_DB_DATABASE"),
		Username: os.Getenv("WEBMAP_DB_USERNAME"),
		Password: os.Getenv("WEBMAP_DB_PASSWORD"),
		Schema:   os.Getenv("WEBMAP_DB_SCHEMA"),
		SSLMode:  os.Getenv("WEBMAP_DB_SSLMODE"),
	}

	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" {
		return nil, NewError("database configuration validation", fmt.Errorf("WEBMAP_DB_HOST, WEBMAP_DB_PORT, WEBMAP_DB_DATABASE and WEBMAP_DB_USERNAME must be set"))
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// Database wraps the shared sql.DB handle together with its logger. It is
// constructed once at process start and closed at shutdown.
type Database struct {
	Instance     *sql.DB
	Logger       *slog.Logger
	QueryTimeout time.Duration
}

// NewDatabase opens a connection pool for the given configuration and
// verifies it with a ping. It exits the process if the database is not
// reachable, as nothing useful can run without storage.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	dsn := fmt.Sprintf(
		"host=%v port=%v dbname=%v user=%v password=%v sslmode=%v search_path=%v",
		config.Host,
		config.Port,
		config.Database,
		config.Username,
		config.Password,
		config.SSLMode,
		config.Schema,
	)

	instance, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("error opening database %v: %v", name, err)
	}

	instance.SetMaxOpenConns(25)
	instance.SetMaxIdleConns(5)
	instance.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultQueryTimeout)
	defer cancel()

	err = instance.PingContext(ctx)
	if err != nil {
		log.Fatalf("error connecting to database %v: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("database", config.Database))

	return &Database{
		Instance:     instance,
		Logger:       logger,
		QueryTimeout: DefaultQueryTimeout,
	}
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	if d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

// QueryContext returns a context bounding one storage call.
func (d *Database) QueryContext() (context.Context, context.CancelFunc) {
	timeout := d.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}
