package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// sessionRepositoryInMemory — единственное хранилище checkout-сессий.
// Сессии живут только в памяти процесса: вся персистентность делегирована
// удалённому API, терять сессию при рестарте — ожидаемое поведение.
type sessionRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.CheckoutSession
}

// NewSessionRepository возвращает in-memory репозиторий checkout-сессий.
func NewSessionRepository() domain.SessionRepository {
	return &sessionRepositoryInMemory{
		items: make(map[string]domain.CheckoutSession),
	}
}

// Create сохраняет новую сессию, если ID ещё не занят.
func (r *sessionRepositoryInMemory) Create(session domain.CheckoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[session.ID]; exists {
		return domain.ErrSessionVersionConflict
	}
	// Сохраняем глубокую копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[session.ID] = session.Clone()
	return nil
}

// Get возвращает копию сессии или ErrSessionNotFound, если её нет.
func (r *sessionRepositoryInMemory) Get(id string) (domain.CheckoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.items[id]
	if !ok {
		return domain.CheckoutSession{}, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Save сохраняет сессию с optimistic-проверкой версии и инкрементирует её.
func (r *sessionRepositoryInMemory) Save(session domain.CheckoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[session.ID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return domain.ErrSessionVersionConflict
	}

	clone := session.Clone()
	clone.Version++
	r.items[session.ID] = clone
	return nil
}

// ListIdleBefore возвращает активные сессии без активности после before,
// отсортированные от самых старых; limit <= 0 — без ограничения.
func (r *sessionRepositoryInMemory) ListIdleBefore(before time.Time, limit int) ([]domain.CheckoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CheckoutSession, 0)
	for _, session := range r.items {
		if session.Status != domain.SessionStatusActive {
			continue
		}
		if !session.LastActivityAt.Before(before) {
			continue
		}
		result = append(result, session.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LastActivityAt.Before(result[j].LastActivityAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Delete удаляет сессию; отсутствие записи ошибкой не считается.
func (r *sessionRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

var _ domain.SessionRepository = (*sessionRepositoryInMemory)(nil)
