package pricing

import (
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

var standard = domain.ShippingMethod{
	ID:         "ship-standard",
	Name:       "Standard",
	PriceMinor: 30000,
}

func items(pairs ...[2]int64) []domain.CheckoutItem {
	result := make([]domain.CheckoutItem, 0, len(pairs))
	for _, p := range pairs {
		result = append(result, domain.CheckoutItem{
			ProductID:      "p",
			Qty:            int32(p[0]),
			UnitPriceMinor: p[1],
		})
	}
	return result
}

func TestComputeSubtotal(t *testing.T) {
	calc := NewCalculator(0)

	summary := calc.Compute(items([2]int64{2, 100000}, [2]int64{1, 350000}), nil, nil, 0, false)
	if summary.SubtotalMinor != 550000 {
		t.Fatalf("subtotal = %d, want 550000", summary.SubtotalMinor)
	}

	if s := calc.Compute(nil, nil, nil, 0, false); s.SubtotalMinor != 0 || s.TotalMinor != 0 {
		t.Fatalf("empty items: %+v", s)
	}
}

func TestComputeFreeShippingThreshold(t *testing.T) {
	calc := NewCalculator(0)

	cases := []struct {
		name    string
		items   []domain.CheckoutItem
		wantFee int64
	}{
		{
			name:    "below threshold pays listed price",
			items:   items([2]int64{1, 499999}),
			wantFee: 30000,
		},
		{
			name:    "at threshold ships free",
			items:   items([2]int64{1, 500000}),
			wantFee: 0,
		},
		{
			name:    "above threshold ships free",
			items:   items([2]int64{2, 300000}),
			wantFee: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := calc.Compute(tc.items, &standard, nil, 0, false)
			if summary.ShippingFeeMinor != tc.wantFee {
				t.Fatalf("shipping fee = %d, want %d", summary.ShippingFeeMinor, tc.wantFee)
			}
		})
	}
}

func TestComputeCouponDiscount(t *testing.T) {
	calc := NewCalculator(0)
	base := items([2]int64{2, 100000}) // subtotal 200000

	cases := []struct {
		name         string
		coupon       *domain.Coupon
		wantDiscount int64
	}{
		{
			name:         "no coupon",
			coupon:       nil,
			wantDiscount: 0,
		},
		{
			name:         "percentage",
			coupon:       &domain.Coupon{Code: "SALE10", Type: domain.DiscountTypePercentage, Amount: 10},
			wantDiscount: 20000,
		},
		{
			name:         "fixed",
			coupon:       &domain.Coupon{Code: "MINUS50", Type: domain.DiscountTypeFixed, Amount: 50000},
			wantDiscount: 50000,
		},
		{
			name:         "fixed capped at subtotal",
			coupon:       &domain.Coupon{Code: "HUGE", Type: domain.DiscountTypeFixed, Amount: 10_000_000},
			wantDiscount: 200000,
		},
		{
			name:         "negative amount ignored",
			coupon:       &domain.Coupon{Code: "BROKEN", Type: domain.DiscountTypeFixed, Amount: -1},
			wantDiscount: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := calc.Compute(base, nil, tc.coupon, 0, false)
			if summary.DiscountMinor != tc.wantDiscount {
				t.Fatalf("discount = %d, want %d", summary.DiscountMinor, tc.wantDiscount)
			}
		})
	}
}

func TestComputeRewardPoints(t *testing.T) {
	calc := NewCalculator(0)
	base := items([2]int64{1, 100000})

	// Баллы учитываются только при включённом флаге.
	summary := calc.Compute(base, nil, nil, 40000, false)
	if summary.RewardPointsMinor != 0 {
		t.Fatalf("disabled points deducted: %+v", summary)
	}

	summary = calc.Compute(base, nil, nil, 40000, true)
	if summary.RewardPointsMinor != 40000 || summary.TotalMinor != 60000 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestComputeTotalNeverNegative(t *testing.T) {
	calc := NewCalculator(0)
	base := items([2]int64{1, 100000})

	coupon := &domain.Coupon{Code: "ALL", Type: domain.DiscountTypePercentage, Amount: 100}
	summary := calc.Compute(base, &standard, coupon, 100000, true)
	if summary.TotalMinor != 0 {
		t.Fatalf("total = %d, want 0", summary.TotalMinor)
	}
}

// Сценарий из бизнес-требований: A(2x100k) + B(1x350k), купон -10%.
func TestComputeReferenceScenario(t *testing.T) {
	calc := NewCalculator(0)
	cart := []domain.CheckoutItem{
		{ProductID: "a", Name: "A", Qty: 2, UnitPriceMinor: 100000},
		{ProductID: "b", Name: "B", Qty: 1, UnitPriceMinor: 350000},
	}
	coupon := &domain.Coupon{Code: "SALE10", Type: domain.DiscountTypePercentage, Amount: 10}

	summary := calc.Compute(cart, &standard, coupon, 0, false)

	if summary.SubtotalMinor != 550000 {
		t.Fatalf("subtotal = %d", summary.SubtotalMinor)
	}
	if summary.ShippingFeeMinor != 0 {
		t.Fatalf("shipping fee = %d, want 0 (over threshold)", summary.ShippingFeeMinor)
	}
	if summary.DiscountMinor != 55000 {
		t.Fatalf("discount = %d, want 55000", summary.DiscountMinor)
	}
	if summary.TotalMinor != 495000 {
		t.Fatalf("total = %d, want 495000", summary.TotalMinor)
	}
}

func TestComputeIdempotent(t *testing.T) {
	calc := NewCalculator(0)
	cart := items([2]int64{3, 70000})
	coupon := &domain.Coupon{Code: "SALE10", Type: domain.DiscountTypePercentage, Amount: 10}

	first := calc.Compute(cart, &standard, coupon, 10000, true)
	second := calc.Compute(cart, &standard, coupon, 10000, true)
	if first != second {
		t.Fatalf("compute is not idempotent: %+v vs %+v", first, second)
	}
}

func TestMaxRewardPoints(t *testing.T) {
	cases := []struct {
		name      string
		subtotal  int64
		available int64
		want      int64
	}{
		{"points below subtotal", 100000, 40000, 40000},
		{"points above subtotal", 100000, 150000, 100000},
		{"zero balance", 100000, 0, 0},
		{"negative guard", -1, 100, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaxRewardPoints(tc.subtotal, tc.available); got != tc.want {
				t.Fatalf("MaxRewardPoints(%d, %d) = %d, want %d", tc.subtotal, tc.available, got, tc.want)
			}
		})
	}
}
