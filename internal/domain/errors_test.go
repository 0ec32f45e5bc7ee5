package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsVersionConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "version conflict error",
			err:  ErrSessionVersionConflict,
			want: true,
		},
		{
			name: "wrapped version conflict error",
			err:  fmt.Errorf("save session: %w", ErrSessionVersionConflict),
			want: true,
		},
		{
			name: "other error",
			err:  ErrSessionNotFound,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsVersionConflict(tt.err)
			if got != tt.want {
				t.Errorf("IsVersionConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsGatewayFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unavailable",
			err:  fmt.Errorf("GET /shipping/methods: %w", ErrGatewayUnavailable),
			want: true,
		},
		{
			name: "rejected",
			err:  ErrGatewayRejected,
			want: true,
		},
		{
			name: "validation",
			err:  NewValidationError(ValidationErrors{FieldItems: "empty"}),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGatewayFailure(tt.err); got != tt.want {
				t.Errorf("IsGatewayFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsValidation(t *testing.T) {
	verr := NewValidationError(ValidationErrors{
		FieldAddress:  "shipping address is required",
		FieldShipping: "shipping method is required",
	})
	wrapped := fmt.Errorf("advance: %w", verr)

	got, ok := AsValidation(wrapped)
	if !ok {
		t.Fatal("AsValidation did not unwrap ValidationError")
	}
	if len(got.Fields) != 2 {
		t.Fatalf("unexpected fields: %v", got.Fields)
	}

	if _, ok := AsValidation(errors.New("plain")); ok {
		t.Fatal("plain error recognized as validation")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	verr := NewValidationError(ValidationErrors{
		FieldShipping: "x",
		FieldAddress:  "y",
	})
	// Ключи в сообщении отсортированы для детерминизма.
	want := "validation failed: address, shipping"
	if verr.Error() != want {
		t.Fatalf("Error() = %q, want %q", verr.Error(), want)
	}
}

func TestIsCouponRejected(t *testing.T) {
	rejected := &CouponRejectedError{
		Code:   "SALE10",
		Reason: CouponRejectExpired,
	}
	wrapped := fmt.Errorf("apply coupon: %w", rejected)

	got, ok := IsCouponRejected(wrapped)
	if !ok {
		t.Fatal("IsCouponRejected did not unwrap rejection")
	}
	if got.Reason != CouponRejectExpired {
		t.Fatalf("reason = %q, want %q", got.Reason, CouponRejectExpired)
	}

	if _, ok := IsCouponRejected(ErrGatewayUnavailable); ok {
		t.Fatal("transport error recognized as coupon rejection")
	}
}
