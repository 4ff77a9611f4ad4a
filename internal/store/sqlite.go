package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fakhrymubarak/weather-tracker/internal/model"
)

var (
	// ErrMissingFields signals an observation without the fields the log
	// requires. It is a precondition violation, never silently defaulted.
	ErrMissingFields = errors.New("observation missing required fields")
	// ErrHumidityRange signals a humidity value outside 0-100.
	ErrHumidityRange = errors.New("humidity out of range")
)

type SQLiteStore struct {
	db         *sql.DB
	insertStmt *sql.Stmt
	recentStmt *sql.Stmt
}

// OpenSQLite opens (creating if absent) the weather_records log at dbPath.
// Schema initialization is idempotent; reopening an existing file is a no-op.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db path: %w", err)
		}
	}

	// DSN notes:
	// - _busy_timeout sets a lock wait
	// - _journal_mode=WAL enables the write-ahead log
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", filepath.Clean(dbPath))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	ins, err := db.Prepare(`
		INSERT INTO weather_records (pincode, location, temperature, humidity, description)
		VALUES (?,?,?,?,?)
	`)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	recent, err := db.Prepare(`
		SELECT id, pincode, location, temperature, humidity, description, timestamp
		FROM weather_records
		WHERE pincode = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`)
	if err != nil {
		_ = ins.Close()
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, insertStmt: ins, recentStmt: recent}, nil
}

func (s *SQLiteStore) Close() error {
	if s.insertStmt != nil {
		_ = s.insertStmt.Close()
	}
	if s.recentStmt != nil {
		_ = s.recentStmt.Close()
	}

	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS weather_records (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			pincode     TEXT NOT NULL,
			location    TEXT NOT NULL,
			temperature REAL,
			humidity    INTEGER,
			description TEXT,
			timestamp   DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_records_recent
			ON weather_records (pincode, timestamp DESC, id DESC);
	`)
	return err
}

// Append inserts one record derived from obs. The timestamp is assigned by
// the store at insert time, not by the caller.
func (s *SQLiteStore) Append(ctx context.Context, pincode string, obs model.Observation) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}

	if obs.Location == "" || obs.Description == "" {
		return ErrMissingFields
	}
	if obs.Humidity < 0 || obs.Humidity > 100 {
		return fmt.Errorf("%w: %d", ErrHumidityRange, obs.Humidity)
	}

	_, err := s.insertStmt.ExecContext(ctx,
		pincode,
		obs.Location,
		obs.TemperatureC,
		obs.Humidity,
		obs.Description,
	)
	return err
}

// QueryRecent returns up to limit records for a pincode, most recent first,
// ties broken by id descending. An unknown pincode yields an empty result.
func (s *SQLiteStore) QueryRecent(ctx context.Context, pincode string, limit int) ([]model.Record, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}

	if limit <= 0 {
		limit = 5
	}

	rows, err := s.recentStmt.QueryContext(ctx, pincode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Record, 0, limit)
	for rows.Next() {
		var rec model.Record
		// The driver materializes DATETIME columns as time.Time (UTC).
		if err := rows.Scan(&rec.ID, &rec.Pincode, &rec.Location, &rec.TemperatureC, &rec.Humidity, &rec.Description, &rec.RecordedAt); err != nil {
			return nil, err
		}
		rec.RecordedAt = rec.RecordedAt.UTC()

		out = append(out, rec)
	}

	return out, rows.Err()
}
