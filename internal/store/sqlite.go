package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/eventdeck/eventdeck/internal/event"
)

// SQLiteStore implements EventStore using SQLite. Slug uniqueness is
// enforced by a UNIQUE index so concurrent submissions cannot race past an
// application-level check; tags are mirrored into a side table so the
// similarity query is a plain join.
type SQLiteStore struct {
	db     *sql.DB // Write connection (single writer)
	readDB *sql.DB // Read connection pool (concurrent readers)
	mu     sync.Mutex

	insertEventStmt *sql.Stmt
	insertTagStmt   *sql.Stmt
}

const eventColumns = `id, slug, title, organizer, overview, description,
	event_date, event_time, mode, venue, location, audience,
	tags, agenda, image, created_at`

// NewSQLiteStore opens (and if needed initializes) the event database at
// dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Write connection: single writer with WAL mode
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Read connection pool: concurrent readers
	readDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(5 * time.Minute)

	s := &SQLiteStore{db: db, readDB: readDB}

	if err := s.initSchema(); err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("store: failed to initialize schema: %w", err)
	}

	s.insertEventStmt, err = db.Prepare(`
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("store: failed to prepare insert statement: %w", err)
	}

	s.insertTagStmt, err = db.Prepare(`INSERT INTO event_tags (event_id, tag) VALUES (?, ?)`)
	if err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("store: failed to prepare tag insert statement: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		slug        TEXT NOT NULL UNIQUE,
		title       TEXT NOT NULL,
		organizer   TEXT NOT NULL,
		overview    TEXT NOT NULL,
		description TEXT NOT NULL,
		event_date  TEXT NOT NULL,
		event_time  TEXT NOT NULL,
		mode        TEXT NOT NULL,
		venue       TEXT NOT NULL,
		location    TEXT NOT NULL,
		audience    TEXT NOT NULL,
		tags        TEXT NOT NULL,
		agenda      TEXT NOT NULL,
		image       TEXT NOT NULL,
		created_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at DESC);

	CREATE TABLE IF NOT EXISTS event_tags (
		event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		tag      TEXT NOT NULL,
		PRIMARY KEY (event_id, tag)
	);
	CREATE INDEX IF NOT EXISTS idx_event_tags_tag ON event_tags(tag);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create persists a new event record and its tag rows in one transaction.
func (s *SQLiteStore) Create(ctx context.Context, e *event.Event) error {
	tagsJSON, err := json.Marshal(e.Tags)
	if err != nil {
		return fmt.Errorf("store: failed to encode tags: %w", err)
	}
	agendaJSON, err := json.Marshal(e.Agenda)
	if err != nil {
		return fmt.Errorf("store: failed to encode agenda: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.StmtContext(ctx, s.insertEventStmt).ExecContext(ctx,
		e.ID, e.Slug, e.Title, e.Organizer, e.Overview, e.Description,
		e.Date, e.Time, string(e.Mode), e.Venue, e.Location, e.Audience,
		string(tagsJSON), string(agendaJSON), e.Image, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("store: failed to insert event: %w", err)
	}

	for _, tag := range e.Tags {
		if _, err := tx.StmtContext(ctx, s.insertTagStmt).ExecContext(ctx, e.ID, tag); err != nil {
			return fmt.Errorf("store: failed to insert tag %q: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: failed to commit event: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if stderrors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ListAll returns all records, most recent first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*event.Event, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetBySlug returns the record with the given slug.
func (s *SQLiteStore) GetBySlug(ctx context.Context, slug string) (*event.Event, error) {
	row := s.readDB.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM events WHERE slug = ?`, slug)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to get event %q: %w", slug, err)
	}
	return e, nil
}

// FindSimilar returns other records sharing at least one tag with the record
// identified by slug.
func (s *SQLiteStore) FindSimilar(ctx context.Context, slug string) ([]*event.Event, error) {
	var sourceID string
	err := s.readDB.QueryRowContext(ctx, `SELECT id FROM events WHERE slug = ?`, slug).Scan(&sourceID)
	if err == sql.ErrNoRows {
		return []*event.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to resolve slug %q: %w", slug, err)
	}

	rows, err := s.readDB.QueryContext(ctx, `
		SELECT DISTINCT `+prefixedEventColumns("e")+`
		FROM events e
		JOIN event_tags t ON t.event_id = e.id
		WHERE e.id != ?
		  AND t.tag IN (SELECT tag FROM event_tags WHERE event_id = ?)
		ORDER BY e.created_at DESC, e.id DESC`,
		sourceID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("store: failed to find similar events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Close closes both database connections.
func (s *SQLiteStore) Close() error {
	if s.insertEventStmt != nil {
		s.insertEventStmt.Close()
	}
	if s.insertTagStmt != nil {
		s.insertTagStmt.Close()
	}
	if err := s.readDB.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

func prefixedEventColumns(alias string) string {
	return alias + `.id, ` + alias + `.slug, ` + alias + `.title, ` + alias + `.organizer, ` +
		alias + `.overview, ` + alias + `.description, ` + alias + `.event_date, ` +
		alias + `.event_time, ` + alias + `.mode, ` + alias + `.venue, ` + alias + `.location, ` +
		alias + `.audience, ` + alias + `.tags, ` + alias + `.agenda, ` + alias + `.image, ` +
		alias + `.created_at`
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(sc scanner) (*event.Event, error) {
	var (
		e          event.Event
		mode       string
		tagsJSON   string
		agendaJSON string
		createdAt  int64
	)
	err := sc.Scan(
		&e.ID, &e.Slug, &e.Title, &e.Organizer, &e.Overview, &e.Description,
		&e.Date, &e.Time, &mode, &e.Venue, &e.Location, &e.Audience,
		&tagsJSON, &agendaJSON, &e.Image, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.Mode = event.Mode(mode)
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("corrupt tags column: %w", err)
	}
	if err := json.Unmarshal([]byte(agendaJSON), &e.Agenda); err != nil {
		return nil, fmt.Errorf("corrupt agenda column: %w", err)
	}
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*event.Event, error) {
	events := make([]*event.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
