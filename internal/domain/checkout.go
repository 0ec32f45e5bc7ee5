package domain

import "time"

// CheckoutStep описывает шаг мастера оформления заказа.
type CheckoutStep int32

const (
	// StepDeliveryInfo — выбор адреса, способа доставки и состава покупки.
	StepDeliveryInfo CheckoutStep = 1
	// StepConfirmation — проверка итоговой суммы и подтверждение условий.
	StepConfirmation CheckoutStep = 2
	// StepSuccess — заказ создан, сессия завершена.
	StepSuccess CheckoutStep = 3
)

// SessionStatus описывает жизненный цикл checkout-сессии.
type SessionStatus string

const (
	// SessionStatusActive — сессия в работе, пользователь проходит шаги 1-2.
	SessionStatusActive SessionStatus = "active"
	// SessionStatusCompleted — заказ успешно создан, сессия терминальна.
	SessionStatusCompleted SessionStatus = "completed"
	// SessionStatusAbandoned — пользователь ушёл или корзина опустела.
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// CheckoutItem — одна позиция, отобранная из корзины в checkout.
// Копируется по значению при входе в checkout: правки живой корзины
// не влияют на уже начатую сессию.
type CheckoutItem struct {
	ProductID string
	// VariantID пуст, если у товара нет вариантов.
	VariantID string
	Name      string
	SKU       string
	Qty       int32
	// UnitPriceMinor — цена за единицу в минимальных денежных единицах.
	UnitPriceMinor int64
}

// OrderSummary — итоговая раскладка суммы заказа. Всегда пересчитывается
// целиком из текущего состояния сессии, никогда не патчится по полям.
type OrderSummary struct {
	SubtotalMinor     int64
	ShippingFeeMinor  int64
	DiscountMinor     int64
	RewardPointsMinor int64
	TotalMinor        int64
}

// CheckoutSession агрегирует всё изменяемое состояние одной попытки
// оформления заказа. Живёт только в памяти и уничтожается при завершении.
type CheckoutSession struct {
	ID     string
	UserID string
	Status SessionStatus
	Step   CheckoutStep

	Items []CheckoutItem

	// Addresses — загруженный список адресов пользователя.
	Addresses       []Address
	SelectedAddress *Address

	// ShippingMethods действительны только для выбранного адреса:
	// смена адреса обнуляет и список, и выбор.
	ShippingMethods  []ShippingMethod
	ShippingSource   ShippingSource
	SelectedShipping *ShippingMethod

	AppliedCoupon *Coupon

	UseRewardPoints bool
	// RewardPointsMinor — сколько баллов пользователь хочет списать
	// (1 балл = 1 минимальная денежная единица).
	RewardPointsMinor int64
	// AvailablePointsMinor — доступный баланс баллов на момент входа.
	AvailablePointsMinor int64

	PaymentMethod string
	Notes         string
	AgreeTerms    bool

	Summary OrderSummary

	// Result заполняется только после успешного commit (Step == StepSuccess).
	Result *OrderResult

	// Warnings — некритичные проблемы, о которых стоит сказать пользователю:
	// недоступный список адресов при старте, частично не подчищенная
	// корзина после commit.
	Warnings []string

	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastActivityAt time.Time
}

// Ключи field-keyed ошибок валидации переходов.
const (
	FieldAddress  = "address"
	FieldShipping = "shipping"
	FieldItems    = "items"
	FieldTerms    = "terms"
	FieldStep     = "step"
)

// ValidationErrors — карта "поле -> причина", блокирующая переход шага.
type ValidationErrors map[string]string

// SubtotalMinor возвращает сумму позиций qty * price.
func (s *CheckoutSession) SubtotalMinor() int64 {
	var sum int64
	for _, item := range s.Items {
		sum += int64(item.Qty) * item.UnitPriceMinor
	}
	return sum
}

// FindItem ищет позицию по productID + variantID.
func (s *CheckoutSession) FindItem(productID, variantID string) (int, bool) {
	for i, item := range s.Items {
		if item.ProductID == productID && item.VariantID == variantID {
			return i, true
		}
	}
	return -1, false
}

// ValidateForAdvance проверяет предусловия перехода 1 -> 2.
// Возвращает пустую карту, если переход разрешён.
func (s *CheckoutSession) ValidateForAdvance() ValidationErrors {
	errs := make(ValidationErrors)
	if s.SelectedAddress == nil {
		errs[FieldAddress] = "shipping address is required"
	}
	if s.SelectedShipping == nil {
		errs[FieldShipping] = "shipping method is required"
	}
	if len(s.Items) == 0 {
		errs[FieldItems] = "checkout items are empty"
	}
	return errs
}

// ValidateForCommit проверяет предусловия перехода 2 -> 3: сессия стоит
// на Confirmation, те же проверки, что и для advance (защита от дрейфа
// состояния), плюс согласие с условиями.
func (s *CheckoutSession) ValidateForCommit() ValidationErrors {
	errs := s.ValidateForAdvance()
	if s.Step != StepConfirmation {
		errs[FieldStep] = "commit is allowed only from the confirmation step"
	}
	if !s.AgreeTerms {
		errs[FieldTerms] = "terms must be accepted"
	}
	return errs
}

// Terminal сообщает, завершена ли сессия (успехом или отказом).
func (s *CheckoutSession) Terminal() bool {
	return s.Status != SessionStatusActive
}

// Clone возвращает глубокую копию сессии: слайсы и указатели не разделяются
// с оригиналом, чтобы хранилище не зависело от мутаций извне.
func (s CheckoutSession) Clone() CheckoutSession {
	clone := s
	clone.Items = append([]CheckoutItem(nil), s.Items...)
	clone.Addresses = append([]Address(nil), s.Addresses...)
	clone.ShippingMethods = append([]ShippingMethod(nil), s.ShippingMethods...)
	clone.Warnings = append([]string(nil), s.Warnings...)
	if s.SelectedAddress != nil {
		addr := *s.SelectedAddress
		clone.SelectedAddress = &addr
	}
	if s.SelectedShipping != nil {
		method := *s.SelectedShipping
		clone.SelectedShipping = &method
	}
	if s.AppliedCoupon != nil {
		coupon := *s.AppliedCoupon
		clone.AppliedCoupon = &coupon
	}
	if s.Result != nil {
		result := *s.Result
		result.Items = append([]CheckoutItem(nil), s.Result.Items...)
		clone.Result = &result
	}
	return clone
}
