package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/contentcrawler/internal/model"
)

// dbFileName is the SQLite database file created under the data
// directory.
const dbFileName = "contentcrawler.db"

// ContentDB provides SQLite-based storage for crawl sessions and the
// content records they accept.
//
// Design decision: We use a single database file for all sessions
// rather than one file per topic. This keeps cross-session queries
// (what did we already collect about X) trivial and simplifies
// backup/restore operations.
type ContentDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ContentDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ContentDB under the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ContentDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &ContentDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *ContentDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *ContentDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *ContentDB) createTables() error {
	schema := `
	-- Sessions record one crawl run each
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		duration_seconds REAL,
		stats_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_topic ON sessions(topic);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	-- Contents store the accepted records, one row per URL per session
	CREATE TABLE IF NOT EXISTS contents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		date_published TEXT,
		relevance_score REAL,
		record_json TEXT NOT NULL,
		crawled_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(session_id, url),
		FOREIGN KEY(session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_contents_session ON contents(session_id);
	CREATE INDEX IF NOT EXISTS idx_contents_url ON contents(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// StartSession creates a session row for a new crawl and returns its ID.
func (cdb *ContentDB) StartSession(ctx context.Context, topic string) (string, error) {
	id := uuid.NewString()

	query := `INSERT INTO sessions (id, topic) VALUES (?, ?)`
	if _, err := cdb.db.ExecContext(ctx, query, id, topic); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return id, nil
}

// FinishSession records a crawl's final statistics against its session.
func (cdb *ContentDB) FinishSession(ctx context.Context, sessionID string, result *model.CrawlResult) error {
	statsJSON, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("failed to serialize stats: %w", err)
	}

	query := `
	UPDATE sessions
	SET finished_at = CURRENT_TIMESTAMP, duration_seconds = ?, stats_json = ?
	WHERE id = ?
	`
	res, err := cdb.db.ExecContext(ctx, query, result.Duration.Seconds(), string(statsJSON), sessionID)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check session update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return nil
}

// SaveContent inserts or updates a content record for a session and
// returns its row ID. Uses UPSERT so re-crawling a URL in the same
// session replaces the old record.
func (cdb *ContentDB) SaveContent(ctx context.Context, sessionID string, rec *model.ContentRecord) (int64, error) {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize record: %w", err)
	}

	query := `
	INSERT INTO contents (session_id, url, title, date_published, relevance_score, record_json)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id, url) DO UPDATE SET
		title = excluded.title,
		date_published = excluded.date_published,
		relevance_score = excluded.relevance_score,
		record_json = excluded.record_json,
		crawled_at = CURRENT_TIMESTAMP
	`

	if _, err := cdb.db.ExecContext(ctx, query,
		sessionID,
		rec.URL,
		rec.Title,
		rec.DatePublished,
		rec.RelevanceScore,
		string(recordJSON),
	); err != nil {
		return 0, fmt.Errorf("failed to save content: %w", err)
	}

	// LastInsertId is unreliable across the upsert's update path, so
	// read the row ID back.
	var id int64
	row := cdb.db.QueryRowContext(ctx,
		`SELECT id FROM contents WHERE session_id = ? AND url = ?`, sessionID, rec.URL)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read content row id: %w", err)
	}
	return id, nil
}

// GetContent retrieves a session's record for a URL. Returns nil
// without error when no row exists.
func (cdb *ContentDB) GetContent(ctx context.Context, sessionID, url string) (*model.ContentRecord, error) {
	var recordJSON string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT record_json FROM contents WHERE session_id = ? AND url = ?`, sessionID, url,
	).Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	var rec model.ContentRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return &rec, nil
}

// SessionContents returns every record saved for a session, newest first.
func (cdb *ContentDB) SessionContents(ctx context.Context, sessionID string) ([]*model.ContentRecord, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT record_json FROM contents WHERE session_id = ? ORDER BY crawled_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents: %w", err)
	}
	defer rows.Close()

	var records []*model.ContentRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}

		var rec model.ContentRecord
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			continue // Skip malformed records
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// SessionMetadata contains summary information about a stored session.
// Used for listing crawl history without loading the records.
type SessionMetadata struct {
	// ID is the session's unique identifier.
	ID string

	// Topic is the crawl topic.
	Topic string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// ContentCount is the number of records saved for the session.
	ContentCount int
}

// ListSessions returns metadata for all stored sessions, newest first.
func (cdb *ContentDB) ListSessions(ctx context.Context) ([]SessionMetadata, error) {
	query := `
	SELECT s.id, s.topic, s.started_at, COUNT(c.id)
	FROM sessions s
	LEFT JOIN contents c ON c.session_id = s.id
	GROUP BY s.id
	ORDER BY s.started_at DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionMetadata
	for rows.Next() {
		var meta SessionMetadata
		var started string
		if err := rows.Scan(&meta.ID, &meta.Topic, &started, &meta.ContentCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
