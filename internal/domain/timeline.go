package domain

import "time"

// TimelineEvent — одно событие жизненного цикла checkout-сессии.
type TimelineEvent struct {
	SessionID string
	Type      string
	Reason    string
	Occurred  time.Time
}
