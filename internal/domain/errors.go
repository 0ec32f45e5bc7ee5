package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка отсутствия хотя бы одной позиции в checkout.
	ErrItemsRequired = errors.New("checkout must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка отсутствующего адреса доставки в payload заказа.
	ErrShippingAddressRequired = errors.New("shipping address is required")
	// Ошибка отсутствующего способа доставки в payload заказа.
	ErrShippingMethodRequired = errors.New("shipping method is required")
	// Ошибка отрицательного списания баллов.
	ErrRewardPointsNegative = errors.New("reward points must be non-negative")
	// Ошибка списания баллов сверх доступного баланса или subtotal.
	ErrRewardPointsExceeded = errors.New("reward points exceed allowed amount")

	// Ошибки обязательных полей адреса.
	ErrAddressNameRequired  = errors.New("address full_name is required")
	ErrAddressPhoneRequired = errors.New("address phone_number is required")
	ErrAddressLineRequired  = errors.New("address line is required")
	ErrAddressCityRequired  = errors.New("address city is required")

	// ErrSessionNotFound возвращается, если checkout-сессия не найдена.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrSessionTerminal — операция над уже завершённой сессией.
	ErrSessionTerminal = errors.New("checkout session is terminal")
	// ErrSessionBusy — по сессии уже выполняется мутирующий вызов;
	// одновременно допускается не более одного.
	ErrSessionBusy = errors.New("checkout session has an operation in flight")
	// ErrSessionVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrSessionVersionConflict = errors.New("checkout session version conflict")
	// ErrAddressNotFound — выбранного адреса нет в загруженном списке.
	ErrAddressNotFound = errors.New("address not found")
	// ErrShippingMethodNotFound — выбранного способа нет в актуальном списке.
	ErrShippingMethodNotFound = errors.New("shipping method not found")
	// ErrItemNotFound — позиция не найдена в составе сессии.
	ErrItemNotFound = errors.New("checkout item not found")

	// ErrGatewayUnavailable — транспортная ошибка удалённого API.
	ErrGatewayUnavailable = errors.New("remote gateway unavailable")
	// ErrGatewayRejected — удалённый API ответил success=false или не-2xx.
	ErrGatewayRejected = errors.New("remote gateway rejected request")
	// ErrUnauthorized — bearer-токен отсутствует или отклонён.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCommitFailed — создание заказа отклонено; состояние сессии
	// сохранено для повторной попытки.
	ErrCommitFailed = errors.New("order commit failed")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ValidationError блокирует переход шага: локальная, синхронная, всегда
// исправима пользовательским вводом. Никогда не считается системным сбоем.
type ValidationError struct {
	Fields ValidationErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// NewValidationError оборачивает field-keyed карту в ошибку.
func NewValidationError(fields ValidationErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidation извлекает ValidationError из цепочки ошибок.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrSessionVersionConflict)
}

// IsGatewayFailure объединяет оба класса ошибок удалённого API.
func IsGatewayFailure(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable) || errors.Is(err, ErrGatewayRejected)
}
