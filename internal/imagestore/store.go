package imagestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"labeld/internal/config"
	"labeld/internal/logging"
)

// Store manages image persistence backed by SQLite.
type Store struct {
	db           *sql.DB
	path         string
	logger       *slog.Logger
	now          func() time.Time
	leaseTimeout time.Duration
	uploadsBase  string
}

// Option customizes a Store at open time.
type Option func(*Store)

// WithClock overrides the time source used for lease stamps and cutoffs.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger for non-fatal events such as skipped rows.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.WithComponent(logger, "store")
		}
	}
}

// Open initializes or connects to the image database and applies migrations.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:           db,
		path:         dbPath,
		logger:       logging.NewNop(),
		now:          func() time.Time { return time.Now().UTC() },
		leaseTimeout: cfg.LeaseTimeout(),
		uploadsBase:  cfg.Uploads.BasePath,
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// LeaseTimeout returns the allocation lease window.
func (s *Store) LeaseTimeout() time.Duration {
	return s.leaseTimeout
}

const imageColumns = "id, projects_id, original_name, link, external_link, local_path, callback_url, labeled, label_data, last_edited, created_at"

// scanImage reads one image row. Malformed label payloads surface as
// ErrMalformedPayload so callers can decide between failing and skipping.
func scanImage(scanner interface{ Scan(dest ...any) error }) (*Image, error) {
	var (
		id           int64
		projectID    int64
		originalName string
		link         string
		externalLink sql.NullString
		localPath    sql.NullString
		callbackURL  sql.NullString
		labeled      int64
		labelRaw     string
		lastEdited   int64
		createdRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&projectID,
		&originalName,
		&link,
		&externalLink,
		&localPath,
		&callbackURL,
		&labeled,
		&labelRaw,
		&lastEdited,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	image := &Image{
		ID:           id,
		ProjectID:    projectID,
		OriginalName: originalName,
		Link:         link,
		ExternalLink: externalLink.String,
		LocalPath:    localPath.String,
		CallbackURL:  callbackURL.String,
		Labeled:      labeled != 0,
	}
	if lastEdited > 0 {
		image.LastEdited = time.UnixMilli(lastEdited).UTC()
	}
	if createdRaw.Valid && createdRaw.String != "" {
		if created, err := time.Parse(time.RFC3339Nano, createdRaw.String); err == nil {
			image.CreatedAt = created
		}
	}

	labelData := make(map[string]any)
	if err := json.Unmarshal([]byte(labelRaw), &labelData); err != nil {
		return image, fmt.Errorf("%w: image %d: %v", ErrMalformedPayload, id, err)
	}
	image.LabelData = labelData
	return image, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
