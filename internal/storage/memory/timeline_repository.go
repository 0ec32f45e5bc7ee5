package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// timelineRepositoryInMemory хранит события сессий в памяти.
// Записи принимаются в порядке поступления, хронология гарантируется при чтении.
type timelineRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.TimelineEvent
}

// NewTimelineRepository создаёт in-memory реализацию TimelineRepository.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineRepositoryInMemory{events: make(map[string][]domain.TimelineEvent)}
}

// Append добавляет событие в хвост журнала сессии.
func (r *timelineRepositoryInMemory) Append(event domain.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.SessionID] = append(r.events[event.SessionID], event)
	return nil
}

// List возвращает копию событий сессии в хронологическом порядке.
func (r *timelineRepositoryInMemory) List(sessionID string) ([]domain.TimelineEvent, error) {
	r.mu.RLock()
	events := r.events[sessionID]
	result := make([]domain.TimelineEvent, len(events))
	copy(result, events)
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Occurred.Before(result[j].Occurred)
	})
	return result, nil
}

var _ domain.TimelineRepository = (*timelineRepositoryInMemory)(nil)
