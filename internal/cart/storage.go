package cart

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"glowcart/internal/domain"
	"glowcart/internal/store"
)

// MemoryStorage keeps lines in process; used by tests and single-page demos.
type MemoryStorage struct {
	mu    sync.Mutex
	lines []domain.RawLine
}

func NewMemoryStorage(lines ...domain.RawLine) *MemoryStorage {
	return &MemoryStorage{lines: slices.Clone(lines)}
}

func (m *MemoryStorage) Load(context.Context) ([]domain.RawLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.lines), nil
}

func (m *MemoryStorage) Save(_ context.Context, lines []domain.RawLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = slices.Clone(lines)
	return nil
}

// KVStorage persists a session's lines as JSON under cart:<sid>.
type KVStorage struct {
	kv  store.Store
	key string
}

func NewKVStorage(kv store.Store, sessionID string) *KVStorage {
	return &KVStorage{kv: kv, key: "cart:" + sessionID}
}

// Load treats a missing or unreadable value as an empty cart.
func (s *KVStorage) Load(ctx context.Context) ([]domain.RawLine, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.RawLine{}, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []domain.RawLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return []domain.RawLine{}, nil
	}
	return lines, nil
}

func (s *KVStorage) Save(ctx context.Context, lines []domain.RawLine) error {
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, string(b))
}
