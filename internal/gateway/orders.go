package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type orderRequestDTO struct {
	Items             []orderItemDTO `json:"items"`
	ShippingAddressID string         `json:"shippingAddressId"`
	BillingAddressID  string         `json:"billingAddressId"`
	ShippingMethodID  string         `json:"shippingMethodId"`
	PaymentMethod     string         `json:"paymentMethod"`
	CouponCode        string         `json:"couponCode,omitempty"`
	UseRewardPoints   bool           `json:"useRewardPoints,omitempty"`
	RewardPoints      int64          `json:"rewardPoints,omitempty"`
	OrderNotes        string         `json:"orderNotes,omitempty"`
}

type orderItemDTO struct {
	ProductID string `json:"productId"`
	VariantID string `json:"productVariantId,omitempty"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type orderResultDTO struct {
	ID                string             `json:"id"`
	OrderNumber       string             `json:"orderNumber"`
	Items             []orderResultItem  `json:"items"`
	TotalAmount       int64              `json:"totalAmount"`
	ShippingAddress   addressDTO         `json:"shippingAddress"`
	EstimatedDelivery time.Time          `json:"estimatedDelivery"`
}

type orderResultItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"productVariantId,omitempty"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// OrderClient реализует domain.OrderService поверх шлюза.
type OrderClient struct {
	client *Client
}

// NewOrderClient создаёт адаптер создания заказа.
func NewOrderClient(client *Client) *OrderClient {
	return &OrderClient{client: client}
}

// Create выполняет POST /order с Idempotency-Key из payload.
func (o *OrderClient) Create(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	dto := orderRequestDTO{
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		ShippingMethodID:  req.ShippingMethodID,
		PaymentMethod:     req.PaymentMethod,
		CouponCode:        req.CouponCode,
		UseRewardPoints:   req.UseRewardPoints,
		RewardPoints:      req.RewardPointsMinor,
		OrderNotes:        req.Notes,
	}
	for _, item := range req.Items {
		dto.Items = append(dto.Items, orderItemDTO{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Qty,
			UnitPrice: item.UnitPriceMinor,
		})
	}

	if req.IdempotencyKey != "" {
		ctx = WithIdempotencyKey(ctx, req.IdempotencyKey)
	}

	var result orderResultDTO
	if err := o.client.do(ctx, http.MethodPost, "/order", nil, dto, &result); err != nil {
		return domain.OrderResult{}, err
	}

	items := make([]domain.CheckoutItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, domain.CheckoutItem{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           item.Name,
			SKU:            item.SKU,
			Qty:            item.Quantity,
			UnitPriceMinor: item.UnitPrice,
		})
	}

	return domain.OrderResult{
		ID:                result.ID,
		OrderNumber:       result.OrderNumber,
		Items:             items,
		TotalMinor:        result.TotalAmount,
		ShippingAddress:   result.ShippingAddress.toDomain(),
		EstimatedDelivery: result.EstimatedDelivery,
	}, nil
}

var _ domain.OrderService = (*OrderClient)(nil)
