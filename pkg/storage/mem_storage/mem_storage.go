package mem_storage

import (
	"sync"
	"sync/atomic"

	"github.com/sanchis/localit/pkg/storage"
)

// MemStorage is an in-memory storage.Backend. Its contents live and die
// with the process, which makes it the session-scoped counterpart of a
// persistent backend.
type MemStorage struct {
	closed uint32

	mu sync.RWMutex
	m  map[string]string
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		m: make(map[string]string),
	}
}

func (s *MemStorage) isClosed() bool {
	return atomic.LoadUint32(&s.closed) != 0
}

func (s *MemStorage) GetItem(key string) (string, bool, error) {
	if s.isClosed() {
		return "", false, storage.ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemStorage) SetItem(key, value string) error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemStorage) RemoveItem(key string) error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemStorage) Clear() error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string]string)
	return nil
}

func (s *MemStorage) Keys() ([]string, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MemStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *MemStorage) Close() error {
	atomic.CompareAndSwapUint32(&s.closed, 0, 1)
	return nil
}
