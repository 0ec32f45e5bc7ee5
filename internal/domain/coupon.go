package domain

import (
	"errors"
	"fmt"
)

// DiscountType задаёт схему расчёта скидки купона.
type DiscountType string

const (
	// DiscountTypePercentage — скидка в процентах от subtotal.
	DiscountTypePercentage DiscountType = "percentage"
	// DiscountTypeFixed — фиксированная скидка в минимальных единицах.
	DiscountTypeFixed DiscountType = "fixed"
)

// Coupon — применённый промокод. Одновременно активен не более одного.
type Coupon struct {
	Code string
	Type DiscountType
	// Amount: для percentage — проценты (10 == -10%),
	// для fixed — сумма в минимальных денежных единицах.
	Amount      int64
	Description string
}

// CouponRejectReason классифицирует отказ валидации промокода.
type CouponRejectReason string

const (
	CouponRejectInvalid    CouponRejectReason = "invalid_code"
	CouponRejectExpired    CouponRejectReason = "expired"
	CouponRejectMinSpend   CouponRejectReason = "minimum_spend_not_met"
	CouponRejectIneligible CouponRejectReason = "items_ineligible"
)

// CouponRejectedError — терминальный для одной попытки отказ валидации.
// Состояние сессии при этом не меняется: пользователь может поправить код
// и попробовать ещё раз.
type CouponRejectedError struct {
	Code    string
	Reason  CouponRejectReason
	Message string
}

func (e *CouponRejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Reason)
}

// IsCouponRejected проверяет, является ли ошибка отказом валидации купона.
func IsCouponRejected(err error) (*CouponRejectedError, bool) {
	var rejected *CouponRejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}
