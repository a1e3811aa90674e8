// Package postgres implements the expense Store on PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/belanjabot/belanjabot/pkg/api"
)

//go:embed 001_create_expenses.sql
var migrationSQL string

// Config holds the PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// Store writes and reads expense rows in an append-only expenses table.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to PostgreSQL and runs the table migration.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
	)

	s := &Store{pool: pool, logger: logger}

	if _, err := pool.Exec(context.Background(), migrationSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migration: %w", err)
	}

	return s, nil
}

// Append inserts one record. Rows are never updated afterwards.
func (s *Store) Append(ctx context.Context, rec api.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO expenses (
			owner_id, expense_date, expense_time, location, item, item_count, amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.OwnerID,
		rec.Date,
		rec.Time,
		rec.Location,
		rec.Item,
		rec.ItemCount,
		rec.Amount.StringFixed(2),
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}

	s.logger.Info("wrote expense row",
		"owner_id", rec.OwnerID,
		"item", rec.Item,
		"amount", rec.Amount.StringFixed(2),
	)

	return nil
}

// ListFor returns every record belonging to the owner, oldest first.
// A row whose amount no longer parses is skipped and logged.
func (s *Store) ListFor(ctx context.Context, ownerID int64) ([]api.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT expense_date, expense_time, location, item, item_count, amount::text, owner_id, created_at
		FROM expenses
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer rows.Close()

	var records []api.Record
	for rows.Next() {
		var (
			rec       api.Record
			date      time.Time
			amountStr string
		)
		if err := rows.Scan(&date, &rec.Time, &rec.Location, &rec.Item,
			&rec.ItemCount, &amountStr, &rec.OwnerID, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning expense row: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			s.logger.Warn("skipping row with malformed amount", "amount", amountStr, "error", err)
			continue
		}

		rec.Date = date.Format(api.DateLayout)
		rec.Amount = amount
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading expense rows: %w", err)
	}

	return records, nil
}

// Owners returns the distinct owner ids present in the table.
func (s *Store) Owners(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT owner_id FROM expenses ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("querying owners: %w", err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning owner id: %w", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading owner ids: %w", err)
	}

	return owners, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
