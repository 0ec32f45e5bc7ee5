package rest

import (
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// envelope — единый формат ответа API: success/data/message.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type itemDTO struct {
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id,omitempty"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

type addressDTO struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	PhoneNumber  string `json:"phone_number"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Ward         string `json:"ward,omitempty"`
	District     string `json:"district,omitempty"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code,omitempty"`
	IsDefault    bool   `json:"is_default"`
}

type shippingMethodDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	PriceMinor    int64  `json:"price_minor"`
	EstimatedDays int32  `json:"estimated_days"`
}

type couponDTO struct {
	Code        string `json:"code"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

type summaryDTO struct {
	SubtotalMinor     int64 `json:"subtotal_minor"`
	ShippingFeeMinor  int64 `json:"shipping_fee_minor"`
	DiscountMinor     int64 `json:"discount_minor"`
	RewardPointsMinor int64 `json:"reward_points_minor"`
	TotalMinor        int64 `json:"total_minor"`
}

type orderResultDTO struct {
	ID                string    `json:"id"`
	OrderNumber       string    `json:"order_number"`
	TotalMinor        int64     `json:"total_minor"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

type sessionDTO struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Status string `json:"status"`
	Step   int32  `json:"step"`

	Items []itemDTO `json:"items"`

	Addresses       []addressDTO `json:"addresses"`
	SelectedAddress *addressDTO  `json:"selected_address,omitempty"`

	ShippingMethods  []shippingMethodDTO `json:"shipping_methods"`
	ShippingSource   string              `json:"shipping_source,omitempty"`
	SelectedShipping *shippingMethodDTO  `json:"selected_shipping,omitempty"`

	AppliedCoupon *couponDTO `json:"applied_coupon,omitempty"`

	UseRewardPoints      bool  `json:"use_reward_points"`
	RewardPointsMinor    int64 `json:"reward_points_minor"`
	AvailablePointsMinor int64 `json:"available_points_minor"`

	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
	AgreeTerms    bool   `json:"agree_terms"`

	Summary summaryDTO `json:"summary"`

	Result *orderResultDTO `json:"result,omitempty"`

	Warnings []string `json:"warnings,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

type timelineEventDTO struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func toAddressDTO(a domain.Address) addressDTO {
	return addressDTO{
		ID:           a.ID,
		FullName:     a.FullName,
		PhoneNumber:  a.PhoneNumber,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		Ward:         a.Ward,
		District:     a.District,
		City:         a.City,
		PostalCode:   a.PostalCode,
		IsDefault:    a.IsDefault,
	}
}

func toShippingMethodDTO(m domain.ShippingMethod) shippingMethodDTO {
	return shippingMethodDTO{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		PriceMinor:    m.PriceMinor,
		EstimatedDays: m.EstimatedDays,
	}
}

func toSessionDTO(s domain.CheckoutSession) sessionDTO {
	dto := sessionDTO{
		ID:                   s.ID,
		UserID:               s.UserID,
		Status:               string(s.Status),
		Step:                 int32(s.Step),
		Items:                make([]itemDTO, 0, len(s.Items)),
		Addresses:            make([]addressDTO, 0, len(s.Addresses)),
		ShippingMethods:      make([]shippingMethodDTO, 0, len(s.ShippingMethods)),
		ShippingSource:       string(s.ShippingSource),
		UseRewardPoints:      s.UseRewardPoints,
		RewardPointsMinor:    s.RewardPointsMinor,
		AvailablePointsMinor: s.AvailablePointsMinor,
		PaymentMethod:        s.PaymentMethod,
		Notes:                s.Notes,
		AgreeTerms:           s.AgreeTerms,
		Warnings:             s.Warnings,
		UpdatedAt:            s.UpdatedAt,
		Summary: summaryDTO{
			SubtotalMinor:     s.Summary.SubtotalMinor,
			ShippingFeeMinor:  s.Summary.ShippingFeeMinor,
			DiscountMinor:     s.Summary.DiscountMinor,
			RewardPointsMinor: s.Summary.RewardPointsMinor,
			TotalMinor:        s.Summary.TotalMinor,
		},
	}

	for _, item := range s.Items {
		dto.Items = append(dto.Items, itemDTO{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           item.Name,
			SKU:            item.SKU,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}
	for _, addr := range s.Addresses {
		dto.Addresses = append(dto.Addresses, toAddressDTO(addr))
	}
	for _, method := range s.ShippingMethods {
		dto.ShippingMethods = append(dto.ShippingMethods, toShippingMethodDTO(method))
	}

	if s.SelectedAddress != nil {
		selected := toAddressDTO(*s.SelectedAddress)
		dto.SelectedAddress = &selected
	}
	if s.SelectedShipping != nil {
		selected := toShippingMethodDTO(*s.SelectedShipping)
		dto.SelectedShipping = &selected
	}
	if s.AppliedCoupon != nil {
		dto.AppliedCoupon = &couponDTO{
			Code:        s.AppliedCoupon.Code,
			Type:        string(s.AppliedCoupon.Type),
			Amount:      s.AppliedCoupon.Amount,
			Description: s.AppliedCoupon.Description,
		}
	}
	if s.Result != nil {
		dto.Result = &orderResultDTO{
			ID:                s.Result.ID,
			OrderNumber:       s.Result.OrderNumber,
			TotalMinor:        s.Result.TotalMinor,
			EstimatedDelivery: s.Result.EstimatedDelivery,
		}
	}

	return dto
}
