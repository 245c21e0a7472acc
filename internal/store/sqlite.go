package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store and applies migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS publications (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			path TEXT NOT NULL,
			summary TEXT,
			authors TEXT,
			published_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_category ON publications(category, created_at)`,
		`CREATE TABLE IF NOT EXISTS assistant_events (
			event_id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assistant_events_request ON assistant_events(request_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreatePublication inserts a publication.
func (s *SQLiteStore) CreatePublication(ctx context.Context, pub *domain.Publication) error {
	authors, err := json.Marshal(pub.Authors)
	if err != nil {
		return fmt.Errorf("marshal authors: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO publications (id, title, category, path, summary, authors, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pub.ID, pub.Title, pub.Category, pub.Path, nullString(pub.Summary), string(authors),
		nullTime(pub.PublishedAt), pub.CreatedAt, pub.UpdatedAt)
	return err
}

const publicationColumns = `id, title, category, path, summary, authors, published_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPublication(row rowScanner) (*domain.Publication, error) {
	var pub domain.Publication
	var summary, authors sql.NullString
	var publishedAt sql.NullTime
	if err := row.Scan(&pub.ID, &pub.Title, &pub.Category, &pub.Path, &summary, &authors,
		&publishedAt, &pub.CreatedAt, &pub.UpdatedAt); err != nil {
		return nil, err
	}
	pub.Summary = summary.String
	if authors.Valid && authors.String != "" && authors.String != "null" {
		if err := json.Unmarshal([]byte(authors.String), &pub.Authors); err != nil {
			return nil, fmt.Errorf("failed to decode authors for %s: %w", pub.ID, err)
		}
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		pub.PublishedAt = &t
	}
	return &pub, nil
}

// GetPublication retrieves a publication by ID.
func (s *SQLiteStore) GetPublication(ctx context.Context, id string) (*domain.Publication, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+publicationColumns+` FROM publications WHERE id = ?`, id)
	pub, err := scanPublication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// ListPublications lists publications, newest first. An empty category lists all.
func (s *SQLiteStore) ListPublications(ctx context.Context, category string) ([]domain.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY COALESCE(published_at, created_at) DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pubs := []domain.Publication{}
	for rows.Next() {
		pub, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, *pub)
	}
	return pubs, rows.Err()
}

// UpdatePublication overwrites the writable fields. Reports whether a row changed.
func (s *SQLiteStore) UpdatePublication(ctx context.Context, pub *domain.Publication) (bool, error) {
	authors, err := json.Marshal(pub.Authors)
	if err != nil {
		return false, fmt.Errorf("marshal authors: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE publications SET title = ?, category = ?, path = ?, summary = ?, authors = ?, published_at = ?, updated_at = ?
		 WHERE id = ?`,
		pub.Title, pub.Category, pub.Path, nullString(pub.Summary), string(authors),
		nullTime(pub.PublishedAt), pub.UpdatedAt, pub.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeletePublication removes a publication. Reports whether a row was deleted.
func (s *SQLiteStore) DeletePublication(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM publications WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateEvent creates a new relay event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assistant_events (event_id, request_id, ts, type, payload) VALUES (?, ?, ?, ?, ?)`,
		event.EventID, event.RequestID, event.Ts, string(event.Type), nullStringBytes(event.Payload))
	return err
}

// GetEvents retrieves events for a relay request in time order.
func (s *SQLiteStore) GetEvents(ctx context.Context, requestID string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, request_id, ts, type, payload FROM assistant_events WHERE request_id = ? ORDER BY ts ASC, rowid ASC`,
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var event domain.Event
		var eventType string
		var payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.RequestID, &event.Ts, &eventType, &payload); err != nil {
			return nil, err
		}
		event.Type = domain.EventType(eventType)
		if payload.Valid {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
