package domain

import (
	"context"
	"time"
)

// AddressService описывает работу с адресами пользователя на удалённом API.
type AddressService interface {
	// ListAddresses возвращает все адреса пользователя.
	ListAddresses(ctx context.Context, userID string) ([]Address, error)
	// CreateAddress создаёт новый адрес и возвращает его с присвоенным ID.
	CreateAddress(ctx context.Context, userID string, addr Address) (Address, error)
}

// ShippingService описывает получение способов доставки для адреса.
// Может вернуть ошибку: деградация до fallback — забота резолвера выше.
type ShippingService interface {
	Methods(ctx context.Context, addressID string) ([]ShippingMethod, error)
}

// CouponService описывает удалённую валидацию промокода.
// Отказ приходит как *CouponRejectedError, транспортные сбои — как ErrGateway*.
type CouponService interface {
	Validate(ctx context.Context, code string, items []CheckoutItem) (Coupon, error)
}

// OrderService описывает создание заказа на удалённом API.
type OrderService interface {
	Create(ctx context.Context, req OrderRequest) (OrderResult, error)
}

// CartService описывает выборочную чистку живой корзины после commit.
type CartService interface {
	// RemoveItem удаляет одну позицию корзины по productID + variantID.
	RemoveItem(ctx context.Context, userID, productID, variantID string) error
}

// CredentialStore хранит bearer-токен для шлюза. Бизнес-логика к токену
// не прикасается — только шлюз при формировании запроса.
type CredentialStore interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// SessionRepository хранит активные checkout-сессии. Единственное
// хранилище, которым владеет сервис; живёт только в памяти.
type SessionRepository interface {
	Create(session CheckoutSession) error
	Get(id string) (CheckoutSession, error)
	// Save сохраняет сессию с optimistic-проверкой Version.
	Save(session CheckoutSession) error
	// ListIdleBefore возвращает активные сессии без активности после before.
	ListIdleBefore(before time.Time, limit int) ([]CheckoutSession, error)
	Delete(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла checkout-сессии.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(sessionID string) ([]TimelineEvent, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
