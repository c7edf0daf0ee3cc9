package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"chemsite/internal/model"
)

const (
	defaultListLimit = 100
	maxListLimit     = 200
)

var ErrContactNotFound = errors.New("contact message not found")

// ContactStore persists contact messages. Create assigns ID and CreatedAt on
// the passed record; IDs are strictly increasing within one store.
type ContactStore interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
	Get(ctx context.Context, id uint) (*model.ContactMessage, error)
	List(ctx context.Context, limit, offset int) ([]model.ContactMessage, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// MemoryContactStore keeps contact messages in process memory. Contents are
// lost on restart.
type MemoryContactStore struct {
	mu       sync.RWMutex
	messages []model.ContactMessage
	nextID   uint
	now      func() time.Time
}

func NewMemoryContactStore() *MemoryContactStore {
	return &MemoryContactStore{
		nextID: 1,
		now:    time.Now,
	}
}

// WithClock replaces the timestamp source. Intended for tests.
func (s *MemoryContactStore) WithClock(now func() time.Time) *MemoryContactStore {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *MemoryContactStore) Create(ctx context.Context, msg *model.ContactMessage) error {
	if msg == nil {
		return errors.New("create contact message failed: nil message")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextID
	msg.CreatedAt = s.now().UTC()
	s.nextID++
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MemoryContactStore) Get(_ context.Context, id uint) (*model.ContactMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// IDs are assigned sequentially from 1 and never deleted.
	if id == 0 || int(id) > len(s.messages) {
		return nil, ErrContactNotFound
	}
	msg := s.messages[id-1]
	return &msg, nil
}

func (s *MemoryContactStore) List(_ context.Context, limit, offset int) ([]model.ContactMessage, error) {
	limit, offset = normalizePage(limit, offset)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ContactMessage, 0, limit)
	for i := len(s.messages) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.messages[i])
	}
	return out, nil
}

func (s *MemoryContactStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.messages)), nil
}

func (s *MemoryContactStore) Ping(context.Context) error { return nil }

func (s *MemoryContactStore) Close() error { return nil }

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
