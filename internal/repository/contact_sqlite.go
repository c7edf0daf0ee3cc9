package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"chemsite/internal/model"
)

const contactSchema = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	subject    TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contact_messages_email ON contact_messages(email);
`

// SQLiteContactStore is a single-file durable contact store.
type SQLiteContactStore struct {
	db *sql.DB
}

func NewSQLiteContactStore(path string) (*SQLiteContactStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create sqlite directory failed: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite failed: %w", err)
	}
	// AUTOINCREMENT ordering relies on a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(contactSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema failed: %w", err)
	}

	return &SQLiteContactStore{db: db}, nil
}

func (s *SQLiteContactStore) Create(ctx context.Context, msg *model.ContactMessage) error {
	createdAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.Name, msg.Email, msg.Subject, msg.Message, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create contact message failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read contact message id failed: %w", err)
	}
	msg.ID = uint(id)
	msg.CreatedAt = createdAt
	return nil
}

func (s *SQLiteContactStore) Get(ctx context.Context, id uint) (*model.ContactMessage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, subject, message, created_at FROM contact_messages WHERE id = ?`, id)
	msg, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact message failed: %w", err)
	}
	return msg, nil
}

func (s *SQLiteContactStore) List(ctx context.Context, limit, offset int) ([]model.ContactMessage, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, created_at FROM contact_messages ORDER BY id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list contact messages failed: %w", err)
	}
	defer rows.Close()

	messages := make([]model.ContactMessage, 0, limit)
	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message failed: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact messages failed: %w", err)
	}
	return messages, nil
}

func (s *SQLiteContactStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count contact messages failed: %w", err)
	}
	return count, nil
}

func (s *SQLiteContactStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteContactStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*model.ContactMessage, error) {
	var (
		msg       model.ContactMessage
		id        int64
		createdAt string
	)
	if err := row.Scan(&id, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	msg.ID = uint(id)
	msg.CreatedAt = parsed
	return &msg, nil
}
