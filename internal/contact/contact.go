// Package contact stores messages from the contact form.
package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/livingcore/internal/logging"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var ErrMissingField = errors.New("contact: all fields are required")

// SuccessMessage is shown once a message is stored.
const SuccessMessage = "Message sent! I'll get back to you soon."

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	email     TEXT NOT NULL,
	message   TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS contacts_timestamp ON contacts(timestamp);
`

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Normalize trims every field and reports which are empty.
func (m *Message) Normalize() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)

	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Email == "" {
		missing = append(missing, "email")
	}
	if m.Message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

type Store struct {
	db     *sql.DB
	now    func() time.Time
	logger *zap.Logger
}

// Open creates the database file and schema if needed.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("contact schema: %w", err)
	}
	return &Store{db: db, now: time.Now, logger: logging.OrNop(logger)}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Submit validates and stores a message. Nothing is written when a field
// is missing.
func (s *Store) Submit(ctx context.Context, m Message) (Message, error) {
	if err := m.Normalize(); err != nil {
		return m, err
	}
	m.ID = uuid.NewString()
	m.Timestamp = s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, message, timestamp) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, m.Message, m.Timestamp.UnixMilli())
	if err != nil {
		s.logger.Error("contact insert failed", zap.Error(err))
		return m, fmt.Errorf("store message: %w", err)
	}
	s.logger.Info("contact stored", zap.String("id", m.ID))
	return m, nil
}

// List returns messages newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Message, error) {
	q := `SELECT id, name, email, message, timestamp FROM contacts ORDER BY timestamp DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var ms int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &ms); err != nil {
			return nil, err
		}
		m.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n)
	return n, err
}
