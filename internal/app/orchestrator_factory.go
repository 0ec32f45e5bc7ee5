package app

import (
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/pricing"
	addrsvc "github.com/vladislavdragonenkov/checkout/internal/service/address"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
	couponsvc "github.com/vladislavdragonenkov/checkout/internal/service/coupon"
	shipsvc "github.com/vladislavdragonenkov/checkout/internal/service/shipping"
)

// createOrchestrator собирает checkout-оркестратор поверх зависимостей;
// Kafka producer опционален.
func createOrchestrator(cfg Config, deps *Dependencies, kafkaProducer *kafka.Producer) checkout.Orchestrator {
	checkoutMetrics := metrics.NewCheckoutMetrics()
	logger := deps.Logger

	return checkout.NewOrchestrator(checkout.Config{
		Sessions: deps.Sessions,
		Timeline: deps.Timeline,
		Outbox:   deps.Outbox,

		Addresses: addrsvc.NewResolver(deps.AddressSvc, logger.WithField("component", "address-resolver")),
		Shipping:  shipsvc.NewResolver(deps.ShippingSvc, checkoutMetrics, logger.WithField("component", "shipping-resolver")),
		Coupons:   couponsvc.NewValidator(deps.CouponSvc, logger.WithField("component", "coupon-validator")),
		Orders:    deps.OrderSvc,
		Cart:      deps.CartSvc,

		Calculator: pricing.NewCalculator(cfg.FreeShippingThresholdMinor),
		Logger:     logger.WithField("component", "checkout"),
		Metrics:    checkoutMetrics,

		KafkaProducer: kafkaProducer,
	})
}
