package shipping

import (
	"context"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// MockService — конфигурируемая заглушка ShippingService для тестов.
type MockService struct {
	MethodsList []domain.ShippingMethod
	MethodsErr  error

	MethodsCalls int
	LastAddress  string
}

// NewMockService возвращает mock с двумя живыми способами доставки.
func NewMockService() *MockService {
	return &MockService{
		MethodsList: []domain.ShippingMethod{
			{ID: "ghn-express", Name: "GHN Express", PriceMinor: 45_000, EstimatedDays: 2},
			{ID: "ghtk-saver", Name: "GHTK Saver", PriceMinor: 25_000, EstimatedDays: 4},
		},
	}
}

// Methods возвращает заранее настроенный список и считает вызовы.
func (m *MockService) Methods(ctx context.Context, addressID string) ([]domain.ShippingMethod, error) {
	m.MethodsCalls++
	m.LastAddress = addressID
	if m.MethodsErr != nil {
		return nil, m.MethodsErr
	}
	out := make([]domain.ShippingMethod, len(m.MethodsList))
	copy(out, m.MethodsList)
	return out, nil
}

var _ domain.ShippingService = (*MockService)(nil)
