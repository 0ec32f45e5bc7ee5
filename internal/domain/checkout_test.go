package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// helper для создания сессии, готовой к переходу 1 -> 2.
func makeSession() domain.CheckoutSession {
	now := time.Now().UTC()
	addr := domain.Address{
		ID:           "addr-1",
		FullName:     "Nguyen Van A",
		PhoneNumber:  "+84000000001",
		AddressLine1: "1 Le Loi",
		Ward:         "Ben Nghe",
		District:     "District 1",
		City:         "Ho Chi Minh City",
		IsDefault:    true,
	}
	method := domain.ShippingMethod{
		ID:            "ship-standard",
		Name:          "Standard",
		PriceMinor:    30000,
		EstimatedDays: 3,
	}
	return domain.CheckoutSession{
		ID:     "session-1",
		UserID: "user-1",
		Status: domain.SessionStatusActive,
		Step:   domain.StepDeliveryInfo,
		Items: []domain.CheckoutItem{
			{ProductID: "p-1", Name: "Item A", SKU: "sku-a", Qty: 2, UnitPriceMinor: 100000},
			{ProductID: "p-2", VariantID: "v-1", Name: "Item B", SKU: "sku-b", Qty: 1, UnitPriceMinor: 350000},
		},
		Addresses:        []domain.Address{addr},
		SelectedAddress:  &addr,
		ShippingMethods:  []domain.ShippingMethod{method},
		ShippingSource:   domain.ShippingSourceLive,
		SelectedShipping: &method,
		CreatedAt:        now,
		UpdatedAt:        now,
		LastActivityAt:   now,
	}
}

func TestSessionSubtotalMinor(t *testing.T) {
	session := makeSession()
	if got := session.SubtotalMinor(); got != 550000 {
		t.Fatalf("subtotal = %d, want 550000", got)
	}

	session.Items = nil
	if got := session.SubtotalMinor(); got != 0 {
		t.Fatalf("empty subtotal = %d, want 0", got)
	}
}

func TestSessionFindItem(t *testing.T) {
	session := makeSession()

	idx, ok := session.FindItem("p-2", "v-1")
	if !ok || idx != 1 {
		t.Fatalf("FindItem(p-2, v-1) = (%d, %v), want (1, true)", idx, ok)
	}

	// Вариант участвует в сопоставлении: p-2 без variant — другая позиция.
	if _, ok := session.FindItem("p-2", ""); ok {
		t.Fatalf("FindItem(p-2, \"\") matched unexpectedly")
	}
}

func TestValidateForAdvance(t *testing.T) {
	cases := []struct {
		name   string
		mut    func(s *domain.CheckoutSession)
		fields []string
	}{
		{
			name: "ready",
			mut:  func(s *domain.CheckoutSession) {},
		},
		{
			name: "no address",
			mut: func(s *domain.CheckoutSession) {
				s.SelectedAddress = nil
			},
			fields: []string{domain.FieldAddress},
		},
		{
			name: "no shipping",
			mut: func(s *domain.CheckoutSession) {
				s.SelectedShipping = nil
			},
			fields: []string{domain.FieldShipping},
		},
		{
			name: "no items",
			mut: func(s *domain.CheckoutSession) {
				s.Items = nil
			},
			fields: []string{domain.FieldItems},
		},
		{
			name: "everything missing",
			mut: func(s *domain.CheckoutSession) {
				s.SelectedAddress = nil
				s.SelectedShipping = nil
				s.Items = nil
			},
			fields: []string{domain.FieldAddress, domain.FieldShipping, domain.FieldItems},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := makeSession()
			tc.mut(&session)

			errs := session.ValidateForAdvance()
			if len(errs) != len(tc.fields) {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, len(tc.fields))
			}
			for _, field := range tc.fields {
				if _, ok := errs[field]; !ok {
					t.Errorf("missing error for field %q: %v", field, errs)
				}
			}
		})
	}
}

func TestValidateForCommit_RequiresTerms(t *testing.T) {
	session := makeSession()
	session.Step = domain.StepConfirmation

	errs := session.ValidateForCommit()
	if _, ok := errs[domain.FieldTerms]; !ok {
		t.Fatalf("expected terms error, got %v", errs)
	}

	session.AgreeTerms = true
	if errs := session.ValidateForCommit(); len(errs) != 0 {
		t.Fatalf("expected no errors with agreed terms, got %v", errs)
	}
}

func TestValidateForCommit_RequiresConfirmationStep(t *testing.T) {
	// Полностью заполненная сессия на шаге 1 не может миновать Confirmation.
	session := makeSession()
	session.AgreeTerms = true

	errs := session.ValidateForCommit()
	if _, ok := errs[domain.FieldStep]; !ok {
		t.Fatalf("expected step error, got %v", errs)
	}

	session.Step = domain.StepConfirmation
	if errs := session.ValidateForCommit(); len(errs) != 0 {
		t.Fatalf("expected no errors on confirmation step, got %v", errs)
	}
}

func TestValidateForCommit_DetectsStateDrift(t *testing.T) {
	// Адрес/доставка могли «уехать» после шага 1 — commit обязан это поймать.
	session := makeSession()
	session.AgreeTerms = true
	session.Step = domain.StepConfirmation
	session.SelectedShipping = nil

	errs := session.ValidateForCommit()
	if _, ok := errs[domain.FieldShipping]; !ok {
		t.Fatalf("expected shipping error, got %v", errs)
	}
}

func TestSessionTerminal(t *testing.T) {
	session := makeSession()
	if session.Terminal() {
		t.Fatal("active session reported as terminal")
	}

	session.Status = domain.SessionStatusCompleted
	if !session.Terminal() {
		t.Fatal("completed session not reported as terminal")
	}

	session.Status = domain.SessionStatusAbandoned
	if !session.Terminal() {
		t.Fatal("abandoned session not reported as terminal")
	}
}
