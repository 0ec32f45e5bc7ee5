package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Checkout события
	EventTypeCheckoutStarted   EventType = "checkout.started"
	EventTypeCheckoutAdvanced  EventType = "checkout.step_advanced"
	EventTypeCheckoutRetreated EventType = "checkout.step_retreated"
	EventTypeCheckoutAbandoned EventType = "checkout.abandoned"

	// Coupon события
	EventTypeCouponApplied  EventType = "checkout.coupon_applied"
	EventTypeCouponRejected EventType = "checkout.coupon_rejected"

	// Order события
	EventTypeOrderCommitted   EventType = "order.committed"
	EventTypeOrderCommitError EventType = "order.commit_failed"

	// Cart события
	EventTypeCartPruned      EventType = "cart.pruned"
	EventTypeCartPruneFailed EventType = "cart.prune_failed"
)

// Topics для Kafka
const (
	TopicCheckoutEvents  = "checkout.events"
	TopicDeadLetterQueue = "checkout.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// CheckoutEvent представляет событие checkout-сессии
type CheckoutEvent struct {
	EventType EventType              `json:"event_type"`
	SessionID string                 `json:"session_id"`
	UserID    string                 `json:"user_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewCheckoutEvent создает новое событие checkout-сессии
func NewCheckoutEvent(eventType EventType, sessionID, userID string, metadata map[string]interface{}) *CheckoutEvent {
	return &CheckoutEvent{
		EventType: eventType,
		SessionID: sessionID,
		UserID:    userID,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
