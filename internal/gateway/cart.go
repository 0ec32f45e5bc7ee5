package gateway

import (
	"context"
	"net/http"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type cartRemoveRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"productVariantId,omitempty"`
}

// CartClient реализует domain.CartService поверх шлюза.
type CartClient struct {
	client *Client
}

// NewCartClient создаёт адаптер чистки корзины.
func NewCartClient(client *Client) *CartClient {
	return &CartClient{client: client}
}

// RemoveItem выполняет DELETE /cart/items для одной позиции.
func (c *CartClient) RemoveItem(ctx context.Context, _ string, productID, variantID string) error {
	req := cartRemoveRequest{
		ProductID: productID,
		VariantID: variantID,
	}
	return c.client.do(ctx, http.MethodDelete, "/cart/items", nil, req, nil)
}

var _ domain.CartService = (*CartClient)(nil)
