package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pawfect-mate/backend/internal/storage/migrations"
)

// SQLiteStorage implements ConversationStorage on a local SQLite database.
// Feedback is appended rather than overwritten; the latest entry wins on read.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens (or creates) conversations.db inside dataDir.
func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "conversations.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStorage{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) SaveConversation(ctx context.Context, rec *Record) error {
	docs, err := json.Marshal(rec.Documents)
	if err != nil {
		return fmt.Errorf("marshalling documents: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, question, answer, model, documents, response_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question = excluded.question,
			answer = excluded.answer,
			model = excluded.model,
			documents = excluded.documents,
			response_time = excluded.response_time
	`, rec.ConversationID, rec.Question, rec.Answer, rec.Model, string(docs), rec.ResponseTime,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) SaveFeedback(ctx context.Context, conversationID string, feedback int, at time.Time) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM conversations WHERE id = ?", conversationID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up conversation: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO feedback (conversation_id, feedback, created_at) VALUES (?, ?, ?)",
		conversationID, feedback, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetConversation(ctx context.Context, conversationID string) (*Record, error) {
	var (
		rec       Record
		docs      string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question, answer, model, documents, response_time, created_at
		FROM conversations WHERE id = ?
	`, conversationID).Scan(&rec.ConversationID, &rec.Question, &rec.Answer, &rec.Model,
		&docs, &rec.ResponseTime, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}

	if err := json.Unmarshal([]byte(docs), &rec.Documents); err != nil {
		return nil, fmt.Errorf("unmarshalling documents: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	var (
		feedback   int
		feedbackAt string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT feedback, created_at FROM feedback
		WHERE conversation_id = ? ORDER BY id DESC LIMIT 1
	`, conversationID).Scan(&feedback, &feedbackAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("getting feedback: %w", err)
	default:
		at, err := time.Parse(time.RFC3339Nano, feedbackAt)
		if err != nil {
			return nil, fmt.Errorf("parsing feedback time: %w", err)
		}
		rec.Feedback = &feedback
		rec.FeedbackAt = &at
	}

	return &rec, nil
}
