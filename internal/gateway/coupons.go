package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// couponDTO — форма купона на проводе.
type couponDTO struct {
	Code           string `json:"code"`
	DiscountType   string `json:"discountType"`
	DiscountAmount int64  `json:"discountAmount"`
	Description    string `json:"description,omitempty"`
}

func (d couponDTO) toDomain() domain.Coupon {
	kind := domain.DiscountTypeFixed
	if strings.EqualFold(d.DiscountType, string(domain.DiscountTypePercentage)) {
		kind = domain.DiscountTypePercentage
	}
	return domain.Coupon{
		Code:        d.Code,
		Type:        kind,
		Amount:      d.DiscountAmount,
		Description: d.Description,
	}
}

type couponValidateRequest struct {
	Code  string              `json:"code"`
	Items []couponRequestItem `json:"items"`
}

type couponRequestItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"productVariantId,omitempty"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// couponRejectionDTO — тело data при отказе валидации купона.
type couponRejectionDTO struct {
	Reason string `json:"reason"`
}

// CouponClient реализует domain.CouponService поверх шлюза.
type CouponClient struct {
	client *Client
}

// NewCouponClient создаёт адаптер валидации купонов.
func NewCouponClient(client *Client) *CouponClient {
	return &CouponClient{client: client}
}

// Validate выполняет POST /coupon/validate. Прикладной отказ (success=false
// c кодом причины) переводится в *domain.CouponRejectedError; транспортные
// сбои остаются ошибками шлюза.
func (c *CouponClient) Validate(ctx context.Context, code string, items []domain.CheckoutItem) (domain.Coupon, error) {
	req := couponValidateRequest{Code: code}
	for _, item := range items {
		req.Items = append(req.Items, couponRequestItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Qty,
			UnitPrice: item.UnitPriceMinor,
		})
	}

	var dto couponDTO
	err := c.client.do(ctx, http.MethodPost, "/coupon/validate", nil, req, &dto)
	if err == nil {
		return dto.toDomain(), nil
	}

	var remote *RemoteError
	if errors.As(err, &remote) && remote.Status >= 400 && remote.Status < 500 && remote.Status != http.StatusUnauthorized {
		return domain.Coupon{}, &domain.CouponRejectedError{
			Code:    code,
			Reason:  rejectionReason(remote.Data),
			Message: remote.Message,
		}
	}
	return domain.Coupon{}, err
}

// rejectionReason извлекает код причины отказа из data; неизвестные и
// отсутствующие коды сводятся к invalid_code.
func rejectionReason(data json.RawMessage) domain.CouponRejectReason {
	var dto couponRejectionDTO
	if len(data) > 0 {
		_ = json.Unmarshal(data, &dto)
	}

	switch domain.CouponRejectReason(dto.Reason) {
	case domain.CouponRejectExpired:
		return domain.CouponRejectExpired
	case domain.CouponRejectMinSpend:
		return domain.CouponRejectMinSpend
	case domain.CouponRejectIneligible:
		return domain.CouponRejectIneligible
	default:
		return domain.CouponRejectInvalid
	}
}

var _ domain.CouponService = (*CouponClient)(nil)
