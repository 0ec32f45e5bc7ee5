package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func newSession(id string, lastActivity time.Time) domain.CheckoutSession {
	return domain.CheckoutSession{
		ID:     id,
		UserID: "user-1",
		Status: domain.SessionStatusActive,
		Step:   domain.StepDeliveryInfo,
		Items: []domain.CheckoutItem{
			{ProductID: "p-1", Qty: 1, UnitPriceMinor: 100000},
		},
		CreatedAt:      lastActivity,
		UpdatedAt:      lastActivity,
		LastActivityAt: lastActivity,
	}
}

func TestSessionRepositoryCreateAndGet(t *testing.T) {
	repo := NewSessionRepository()
	now := time.Now().UTC()

	if err := repo.Create(newSession("s-1", now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(newSession("s-1", now)); !errors.Is(err, domain.ErrSessionVersionConflict) {
		t.Fatalf("duplicate create: %v", err)
	}

	session, err := repo.Get("s-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session.UserID != "user-1" {
		t.Fatalf("unexpected session: %+v", session)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("missing get: %v", err)
	}
}

func TestSessionRepositorySaveVersionConflict(t *testing.T) {
	repo := NewSessionRepository()
	now := time.Now().UTC()
	if err := repo.Create(newSession("s-1", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	session, _ := repo.Get("s-1")
	session.Notes = "first save"
	if err := repo.Save(session); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Повторный Save с устаревшей версией должен конфликтовать.
	if err := repo.Save(session); !errors.Is(err, domain.ErrSessionVersionConflict) {
		t.Fatalf("stale save: %v", err)
	}

	fresh, _ := repo.Get("s-1")
	if fresh.Notes != "first save" || fresh.Version != session.Version+1 {
		t.Fatalf("unexpected stored state: %+v", fresh)
	}
}

func TestSessionRepositoryReturnsCopies(t *testing.T) {
	repo := NewSessionRepository()
	now := time.Now().UTC()
	if err := repo.Create(newSession("s-1", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, _ := repo.Get("s-1")
	first.Items[0].Qty = 99

	second, _ := repo.Get("s-1")
	if second.Items[0].Qty != 1 {
		t.Fatalf("stored session mutated through returned copy: %+v", second.Items)
	}
}

func TestSessionRepositoryListIdleBefore(t *testing.T) {
	repo := NewSessionRepository()
	now := time.Now().UTC()

	stale := newSession("stale", now.Add(-time.Hour))
	fresh := newSession("fresh", now)
	completed := newSession("done", now.Add(-2*time.Hour))
	completed.Status = domain.SessionStatusCompleted

	for _, s := range []domain.CheckoutSession{stale, fresh, completed} {
		if err := repo.Create(s); err != nil {
			t.Fatalf("create %s: %v", s.ID, err)
		}
	}

	idle, err := repo.ListIdleBefore(now.Add(-30*time.Minute), 10)
	if err != nil {
		t.Fatalf("list idle: %v", err)
	}
	if len(idle) != 1 || idle[0].ID != "stale" {
		t.Fatalf("unexpected idle sessions: %+v", idle)
	}
}

func TestSessionRepositoryDelete(t *testing.T) {
	repo := NewSessionRepository()
	if err := repo.Create(newSession("s-1", time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete("s-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get("s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("session survived delete: %v", err)
	}
	// Повторное удаление — no-op.
	if err := repo.Delete("s-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
