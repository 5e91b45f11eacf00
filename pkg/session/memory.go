package session

import "sync"

// memoryStore keeps the token in process memory.
type memoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemory returns a Store that lives only as long as the process, seeded
// with token (which may be empty).
func NewMemory(token string) Store {
	return &memoryStore{token: token}
}

func (s *memoryStore) Read() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *memoryStore) Write(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *memoryStore) Close() error { return nil }
