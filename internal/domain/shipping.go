package domain

// ShippingMethod — способ доставки, доступный для конкретного адреса.
type ShippingMethod struct {
	ID          string
	Name        string
	Description string
	PriceMinor  int64
	// EstimatedDays — оценка срока доставки в днях.
	EstimatedDays int32
}

// ShippingSource помечает происхождение списка способов доставки:
// живой ответ сервиса или детерминированный fallback деградированного режима.
type ShippingSource string

const (
	ShippingSourceLive     ShippingSource = "live"
	ShippingSourceFallback ShippingSource = "fallback"
)

// ShippingResolution — результат подбора способов доставки. Методы не пусты
// даже в деградированном режиме: checkout не должен блокироваться из-за
// недоступности сервиса доставки.
type ShippingResolution struct {
	Methods []ShippingMethod
	Source  ShippingSource
}

// Degraded сообщает, что список получен из fallback, а не от живого сервиса.
func (r ShippingResolution) Degraded() bool {
	return r.Source == ShippingSourceFallback
}
