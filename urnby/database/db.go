package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string `toml:"driver"`
	// Path is the SQLite file. Ignored for postgres.
	Path string `toml:"path"`

	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
	PoolSize int    `toml:"pool_size"`
}

type DB struct {
	// pool is only set for postgres.
	pool   *pgxpool.Pool
	bunDB  *bun.DB
	driver string
}

func New(ctx context.Context, cfg Config) (*DB, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("db.path is required for sqlite")
		}
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return OpenSQLite(ctx, "file:"+cfg.Path+"?cache=shared")
	case DriverPostgres:
		return openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

// OpenSQLite opens a bun handle over sqliteshim. A single connection keeps
// writers serialized the way one database file expects.
func OpenSQLite(ctx context.Context, dsn string) (*DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := &DB{bunDB: bun.NewDB(sqldb, sqlitedialect.New()), driver: DriverSQLite}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory opens a private in-memory SQLite database.
func OpenMemory(ctx context.Context, name string) (*DB, error) {
	return OpenSQLite(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(name)))
}

func buildConnString(cfg Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     cfg.Database,
		RawQuery: "sslmode=" + sslMode + "&connect_timeout=5",
	}
	return u.String()
}

func openPostgres(ctx context.Context, cfg Config) (*DB, error) {
	dsn := buildConnString(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := &DB{pool: pool, bunDB: bun.NewDB(sqldb, pgdialect.New()), driver: DriverPostgres}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) Driver() string {
	return db.driver
}

// ExecWithLog runs a raw statement and logs it with its duration.
func (db *DB) ExecWithLog(ctx context.Context, query string, args ...any) (int64, error) {
	start := time.Now()

	var affected int64
	var err error
	if db.pool != nil {
		tag, execErr := db.pool.Exec(ctx, query, args...)
		affected, err = tag.RowsAffected(), execErr
	} else {
		res, execErr := db.bunDB.ExecContext(ctx, query, args...)
		err = execErr
		if err == nil {
			affected, _ = res.RowsAffected()
		}
	}
	logger.LogQuery("exec", query, time.Since(start), err, slog.Int64("affected_rows", affected))
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

func (db *DB) Ping(ctx context.Context) error {
	if db.pool != nil {
		if err := db.pool.Ping(ctx); err != nil {
			return fmt.Errorf("pgxpool ping failed: %w", err)
		}
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// InitializeSchema creates every table and index if missing. There are no
// migrations.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.ActiveShift)(nil),
		(*models.HistoricalShift)(nil),
		(*models.Session)(nil),
		(*models.SessionHistory)(nil),
		(*models.TimeOfDeath)(nil),
		(*models.Replacement)(nil),
		(*models.CommandRecord)(nil),
	}

	for _, model := range tables {
		query := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists()

		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_historical_guild_user ON historical(guild_id, user_id);",
		"CREATE INDEX IF NOT EXISTS idx_historical_guild_session ON historical(guild_id, session);",
		"CREATE INDEX IF NOT EXISTS idx_reps_guild_in ON reps(guild_id, in_timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_tod_guild_mob ON tod(guild_id, mob, submitted_timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_commands_guild_user ON commands(guild_id, user_id);",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	slog.Info("Database schema ready",
		slog.String("type", "db"),
		slog.String("driver", db.driver),
		slog.Int("tables", len(tables)),
	)
	return nil
}

// Tables lists the exported tables in a stable order.
func Tables() []string {
	return []string{"active", "historical", "session", "session_history", "tod", "reps", "commands"}
}
