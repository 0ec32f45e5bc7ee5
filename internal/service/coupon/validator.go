package coupon

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// Validator проверяет купоны через удалённый сервис и нормализует
// результат: пустой код отклоняется локально, отказ сервиса приходит
// как CouponRejectedError, прочие ошибки транслируются без изменений.
type Validator struct {
	service domain.CouponService
	logger  *log.Entry
}

// NewValidator создаёт валидатор купонов.
func NewValidator(service domain.CouponService, logger *log.Entry) *Validator {
	if logger == nil {
		logger = log.WithField("component", "coupon-validator")
	}
	return &Validator{
		service: service,
		logger:  logger,
	}
}

// Validate проверяет купон для набора позиций корзины.
func (v *Validator) Validate(ctx context.Context, code string, items []domain.CheckoutItem) (domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, &domain.CouponRejectedError{
			Code:    code,
			Reason:  domain.CouponRejectInvalid,
			Message: "coupon code is empty",
		}
	}

	coupon, err := v.service.Validate(ctx, code, items)
	if err != nil {
		if rejected, ok := domain.IsCouponRejected(err); ok {
			v.logger.WithFields(log.Fields{
				"code":   code,
				"reason": rejected.Reason,
			}).Info("coupon rejected")
		}
		return domain.Coupon{}, err
	}

	v.logger.WithFields(log.Fields{
		"code": coupon.Code,
		"type": coupon.Type,
	}).Info("coupon validated")

	return coupon, nil
}
