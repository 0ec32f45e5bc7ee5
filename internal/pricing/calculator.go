package pricing

import "github.com/vladislavdragonenkov/checkout/internal/domain"

// DefaultFreeShippingThresholdMinor — порог бесплатной доставки
// в минимальных денежных единицах.
const DefaultFreeShippingThresholdMinor int64 = 500_000

// Calculator — чистый калькулятор итоговой суммы заказа. Не имеет
// состояния кроме конфигурации и не выполняет I/O: оркестратор вызывает
// его заново после каждой мутации, вместо инкрементальных патчей полей.
type Calculator struct {
	// FreeShippingThresholdMinor: при subtotal >= порога доставка бесплатна.
	FreeShippingThresholdMinor int64
}

// NewCalculator возвращает калькулятор с заданным порогом бесплатной
// доставки; threshold <= 0 включает значение по умолчанию.
func NewCalculator(thresholdMinor int64) Calculator {
	if thresholdMinor <= 0 {
		thresholdMinor = DefaultFreeShippingThresholdMinor
	}
	return Calculator{FreeShippingThresholdMinor: thresholdMinor}
}

// Compute выводит OrderSummary из текущих выборов сессии.
// Идемпотентна и свободна от побочных эффектов.
func (c Calculator) Compute(
	items []domain.CheckoutItem,
	shipping *domain.ShippingMethod,
	coupon *domain.Coupon,
	rewardPointsMinor int64,
	rewardPointsEnabled bool,
) domain.OrderSummary {
	var subtotal int64
	for _, item := range items {
		subtotal += int64(item.Qty) * item.UnitPriceMinor
	}

	var shippingFee int64
	if shipping != nil {
		shippingFee = shipping.PriceMinor
	}
	if subtotal >= c.FreeShippingThresholdMinor {
		shippingFee = 0
	}

	discount := couponDiscount(subtotal, coupon)

	var rewardDiscount int64
	if rewardPointsEnabled && rewardPointsMinor > 0 {
		rewardDiscount = rewardPointsMinor
	}

	total := subtotal + shippingFee - discount - rewardDiscount
	if total < 0 {
		total = 0
	}

	return domain.OrderSummary{
		SubtotalMinor:     subtotal,
		ShippingFeeMinor:  shippingFee,
		DiscountMinor:     discount,
		RewardPointsMinor: rewardDiscount,
		TotalMinor:        total,
	}
}

// couponDiscount считает скидку купона; скидка никогда не превышает subtotal.
func couponDiscount(subtotalMinor int64, coupon *domain.Coupon) int64 {
	if coupon == nil {
		return 0
	}

	var discount int64
	switch coupon.Type {
	case domain.DiscountTypePercentage:
		discount = subtotalMinor * coupon.Amount / 100
	case domain.DiscountTypeFixed:
		discount = coupon.Amount
	}

	if discount < 0 {
		discount = 0
	}
	if discount > subtotalMinor {
		discount = subtotalMinor
	}
	return discount
}

// MaxRewardPoints возвращает предельно допустимое списание баллов:
// не больше доступного баланса и не больше subtotal.
func MaxRewardPoints(subtotalMinor, availableMinor int64) int64 {
	limit := subtotalMinor
	if availableMinor < limit {
		limit = availableMinor
	}
	if limit < 0 {
		return 0
	}
	return limit
}
