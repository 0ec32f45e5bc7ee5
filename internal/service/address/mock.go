package address

import (
	"context"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// MockService — конфигурируемая заглушка AddressService для тестов.
type MockService struct {
	Addresses []domain.Address
	ListErr   error
	CreateErr error

	ListCalls   int
	CreateCalls int
}

// NewMockService возвращает mock с успешным сценарием по умолчанию.
func NewMockService(addresses ...domain.Address) *MockService {
	return &MockService{Addresses: addresses}
}

// ListAddresses возвращает заранее настроенный список и считает вызовы.
func (m *MockService) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Address, len(m.Addresses))
	copy(out, m.Addresses)
	return out, nil
}

// CreateAddress добавляет адрес в список mock-а и считает вызовы.
func (m *MockService) CreateAddress(ctx context.Context, userID string, addr domain.Address) (domain.Address, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return domain.Address{}, m.CreateErr
	}
	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}
	m.Addresses = append(m.Addresses, addr)
	return addr, nil
}

var _ domain.AddressService = (*MockService)(nil)
