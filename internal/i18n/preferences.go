package i18n

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// PreferenceStore persists one language code per visitor. Load reports found=false
// for a visitor with no stored selection. Deleting a missing entry is not an error.
type PreferenceStore interface {
	Load(ctx context.Context, visitorID string) (lang string, found bool, err error)
	Save(ctx context.Context, visitorID, lang string) error
	Delete(ctx context.Context, visitorID string) error
}

type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	langs map[string]string
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{langs: map[string]string{}}
}

func (s *MemoryPreferenceStore) Load(_ context.Context, visitorID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lang, ok := s.langs[visitorID]
	return lang, ok, nil
}

func (s *MemoryPreferenceStore) Save(_ context.Context, visitorID, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.langs[visitorID] = lang
	return nil
}

func (s *MemoryPreferenceStore) Delete(_ context.Context, visitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.langs, visitorID)
	return nil
}

// Preferences tracks the active language of each visitor.
type Preferences struct {
	bundle *Bundle
	store  PreferenceStore
}

func NewPreferences(bundle *Bundle, store PreferenceStore) *Preferences {
	return &Preferences{bundle: bundle, store: store}
}

// Current returns the visitor's stored language, or the primary language on first use.
// A stored language the bundle no longer carries also yields the primary language.
func (p *Preferences) Current(ctx context.Context, visitorID string) (string, error) {
	if visitorID == "" {
		return p.bundle.Fallback(), nil
	}
	lang, found, err := p.store.Load(ctx, visitorID)
	if err != nil {
		return "", fmt.Errorf("load language preference: %w", err)
	}
	if !found || !p.bundle.IsSupported(lang) {
		return p.bundle.Fallback(), nil
	}
	return lang, nil
}

func (p *Preferences) Select(ctx context.Context, visitorID, lang string) (string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !p.bundle.IsSupported(lang) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	if visitorID == "" {
		return "", errors.New("visitor id is required")
	}
	if err := p.store.Save(ctx, visitorID, lang); err != nil {
		return "", fmt.Errorf("save language preference: %w", err)
	}
	return lang, nil
}

func (p *Preferences) Reset(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return nil
	}
	if err := p.store.Delete(ctx, visitorID); err != nil {
		return fmt.Errorf("delete language preference: %w", err)
	}
	return nil
}
