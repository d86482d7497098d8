package users

import (
	"context"
	"sync"
)

// MemoryStore keeps each user's config document in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string][]byte
}

var _ PreferenceStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: make(map[string][]byte)}
}

func (s *MemoryStore) TableColumns(ctx context.Context, user User, table string) ([]string, bool, error) {
	if user.IsAnonymous() {
		return nil, false, nil
	}
	if err := validTable(table); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	doc := s.configs[user.Username]
	s.mu.RUnlock()
	cols, ok := columnsFromConfig(doc, table)
	return cols, ok, nil
}

func (s *MemoryStore) SetTableColumns(ctx context.Context, user User, table string, columns []string) error {
	if user.IsAnonymous() {
		return ErrAnonymous
	}
	if err := validTable(table); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := setColumnsInConfig(s.configs[user.Username], table, columns)
	if err != nil {
		return err
	}
	s.configs[user.Username] = doc
	return nil
}

// Config returns a copy of the user's raw config document.
func (s *MemoryStore) Config(user User) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.configs[user.Username]...)
}
