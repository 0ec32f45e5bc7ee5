package coupon

import (
	"context"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// MockService — конфигурируемая заглушка CouponService для тестов.
type MockService struct {
	Coupon      domain.Coupon
	ValidateErr error

	ValidateCalls int
	LastCode      string
}

// NewMockService возвращает mock с процентным купоном по умолчанию.
func NewMockService() *MockService {
	return &MockService{
		Coupon: domain.Coupon{
			Code:   "SAVE10",
			Type:   domain.DiscountTypePercentage,
			Amount: 10,
		},
	}
}

// Validate возвращает заранее настроенный купон или ошибку.
func (m *MockService) Validate(ctx context.Context, code string, items []domain.CheckoutItem) (domain.Coupon, error) {
	m.ValidateCalls++
	m.LastCode = code
	if m.ValidateErr != nil {
		return domain.Coupon{}, m.ValidateErr
	}
	return m.Coupon, nil
}

var _ domain.CouponService = (*MockService)(nil)
