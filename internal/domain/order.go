package domain

import "time"

// OrderRequestItem — одна позиция в payload создания заказа.
type OrderRequestItem struct {
	ProductID      string
	VariantID      string
	Qty            int32
	UnitPriceMinor int64
}

// OrderRequest — неизменяемый payload для POST /order. Собирается из
// провалидированной сессии непосредственно перед отправкой.
type OrderRequest struct {
	// IdempotencyKey защищает от двойного создания заказа при retry.
	IdempotencyKey    string
	UserID            string
	Items             []OrderRequestItem
	ShippingAddressID string
	BillingAddressID  string
	ShippingMethodID  string
	PaymentMethod     string
	CouponCode        string
	UseRewardPoints   bool
	RewardPointsMinor int64
	Notes             string
}

// ValidateInvariants проверяет базовые инварианты payload перед отправкой.
func (r *OrderRequest) ValidateInvariants() []error {
	var errs []error

	if r.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if len(r.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if r.ShippingAddressID == "" {
		errs = append(errs, ErrShippingAddressRequired)
	}
	if r.ShippingMethodID == "" {
		errs = append(errs, ErrShippingMethodRequired)
	}
	for _, item := range r.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}
	if r.RewardPointsMinor < 0 {
		errs = append(errs, ErrRewardPointsNegative)
	}

	return errs
}

// OrderResult — неизменяемый результат успешно созданного заказа,
// терминальный артефакт checkout-сессии.
type OrderResult struct {
	ID                string
	OrderNumber       string
	Items             []CheckoutItem
	TotalMinor        int64
	ShippingAddress   Address
	EstimatedDelivery time.Time
}
