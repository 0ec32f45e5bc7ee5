package app

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/gateway"
	addrsvc "github.com/vladislavdragonenkov/checkout/internal/service/address"
	couponsvc "github.com/vladislavdragonenkov/checkout/internal/service/coupon"
	shipsvc "github.com/vladislavdragonenkov/checkout/internal/service/shipping"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Sessions domain.SessionRepository
	Outbox   domain.OutboxRepository
	Timeline domain.TimelineRepository

	AddressSvc  domain.AddressService
	ShippingSvc domain.ShippingService
	CouponSvc   domain.CouponService
	OrderSvc    domain.OrderService
	CartSvc     domain.CartService

	// Gateway не nil только при настроенном удалённом API;
	// используется для health check.
	Gateway *gateway.Client

	Logger *log.Entry
}

// NewDependencies создаёт и инициализирует все зависимости приложения.
// Без GatewayBaseURL сервис поднимается в dev-режиме на mock-сервисах.
func NewDependencies(cfg Config, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Sessions: memory.NewSessionRepository(),
		Outbox:   memory.NewOutboxRepository(),
		Timeline: memory.NewTimelineRepository(),
		Logger:   logger,
	}

	if cfg.GatewayBaseURL == "" {
		logger.Warn("gateway base url is empty, using mock commerce services")
		deps.AddressSvc = addrsvc.NewMockService(
			domain.Address{ID: "dev-address", FullName: "Dev User", PhoneNumber: "+10000000000", AddressLine1: "1 Dev Street", City: "Devtown", IsDefault: true},
		)
		deps.ShippingSvc = shipsvc.NewMockService()
		deps.CouponSvc = couponsvc.NewMockService()
		deps.OrderSvc = devOrderService{}
		deps.CartSvc = devCartService{}
		return deps
	}

	creds := gateway.NewMemoryCredentialStore(cfg.GatewayToken)
	client := gateway.NewClient(cfg.GatewayBaseURL, creds, logger.WithField("component", "gateway"))

	deps.Gateway = client
	deps.AddressSvc = gateway.NewAddressClient(client)
	deps.ShippingSvc = gateway.NewShippingClient(client)
	deps.CouponSvc = gateway.NewCouponClient(client)
	deps.OrderSvc = gateway.NewOrderClient(client)
	deps.CartSvc = gateway.NewCartClient(client)
	return deps
}

// devOrderService создаёт фиктивные заказы в dev-режиме.
type devOrderService struct{}

func (devOrderService) Create(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	id := uuid.NewString()
	items := make([]domain.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CheckoutItem{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}
	return domain.OrderResult{
		ID:          id,
		OrderNumber: "DEV-" + id[:8],
		Items:       items,
	}, nil
}

// devCartService игнорирует чистку корзины в dev-режиме.
type devCartService struct{}

func (devCartService) RemoveItem(ctx context.Context, userID, productID, variantID string) error {
	return nil
}

var _ domain.OrderService = devOrderService{}
var _ domain.CartService = devCartService{}
