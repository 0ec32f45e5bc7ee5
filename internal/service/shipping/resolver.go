package shipping

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

// FallbackMethodID — идентификатор резервного способа доставки.
const FallbackMethodID = "cod-standard"

// Resolver загружает способы доставки с деградацией до резервного
// списка. Resolve никогда не возвращает ошибку: при недоступности
// удалённого сервиса пользователь получает резервный способ и может
// продолжить оформление.
type Resolver struct {
	service domain.ShippingService
	metrics *metrics.CheckoutMetrics
	logger  *log.Entry
}

// NewResolver создаёт резолвер способов доставки.
func NewResolver(service domain.ShippingService, m *metrics.CheckoutMetrics, logger *log.Entry) *Resolver {
	if logger == nil {
		logger = log.WithField("component", "shipping-resolver")
	}
	return &Resolver{
		service: service,
		metrics: m,
		logger:  logger,
	}
}

// Resolve возвращает способы доставки для адреса. Пустой ответ
// удалённого сервиса трактуется так же, как его недоступность.
func (r *Resolver) Resolve(ctx context.Context, addressID string) domain.ShippingResolution {
	methods, err := r.service.Methods(ctx, addressID)
	if err != nil {
		r.logger.WithError(err).WithField("address_id", addressID).
			Warn("shipping service unavailable, serving fallback methods")
		r.metrics.RecordFallbackShipping()
		return fallbackResolution()
	}

	if len(methods) == 0 {
		r.logger.WithField("address_id", addressID).
			Warn("shipping service returned no methods, serving fallback methods")
		r.metrics.RecordFallbackShipping()
		return fallbackResolution()
	}

	return domain.ShippingResolution{
		Methods: methods,
		Source:  domain.ShippingSourceLive,
	}
}

// FallbackMethods возвращает резервный список способов доставки.
func FallbackMethods() []domain.ShippingMethod {
	return []domain.ShippingMethod{
		{
			ID:            FallbackMethodID,
			Name:          "Standard Delivery (COD)",
			Description:   "Pay on delivery, confirmed by operator",
			PriceMinor:    30_000,
			EstimatedDays: 5,
		},
	}
}

func fallbackResolution() domain.ShippingResolution {
	return domain.ShippingResolution{
		Methods: FallbackMethods(),
		Source:  domain.ShippingSourceFallback,
	}
}
