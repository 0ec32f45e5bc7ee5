package gateway

import (
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// memoryCredentialStore — потокобезопасное хранилище bearer-токена в памяти.
type memoryCredentialStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryCredentialStore создаёт CredentialStore с начальным токеном.
func NewMemoryCredentialStore(token string) domain.CredentialStore {
	return &memoryCredentialStore{token: token}
}

func (s *memoryCredentialStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *memoryCredentialStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memoryCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

var _ domain.CredentialStore = (*memoryCredentialStore)(nil)
