package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// shippingMethodDTO — форма способа доставки на проводе.
type shippingMethodDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         int64  `json:"price"`
	EstimatedDays int32  `json:"estimatedDays"`
}

func (d shippingMethodDTO) toDomain() domain.ShippingMethod {
	return domain.ShippingMethod{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		PriceMinor:    d.Price,
		EstimatedDays: d.EstimatedDays,
	}
}

// ShippingClient реализует domain.ShippingService поверх шлюза.
type ShippingClient struct {
	client *Client
}

// NewShippingClient создаёт адаптер способов доставки.
func NewShippingClient(client *Client) *ShippingClient {
	return &ShippingClient{client: client}
}

// Methods выполняет GET /shipping/methods?addressId=.
func (s *ShippingClient) Methods(ctx context.Context, addressID string) ([]domain.ShippingMethod, error) {
	query := url.Values{"addressId": []string{addressID}}

	var dtos []shippingMethodDTO
	if err := s.client.do(ctx, http.MethodGet, "/shipping/methods", query, nil, &dtos); err != nil {
		return nil, err
	}

	result := make([]domain.ShippingMethod, 0, len(dtos))
	for _, dto := range dtos {
		result = append(result, dto.toDomain())
	}
	return result, nil
}

var _ domain.ShippingService = (*ShippingClient)(nil)
