package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/pricing"
	"github.com/vladislavdragonenkov/checkout/internal/service/address"
	"github.com/vladislavdragonenkov/checkout/internal/service/coupon"
	"github.com/vladislavdragonenkov/checkout/internal/service/shipping"
)

// Orchestrator описывает интерфейс управления checkout-сессией.
// Все мутирующие методы работают в режиме single-flight: по одной сессии
// одновременно выполняется не более одного вызова, второй получает
// ErrSessionBusy.
type Orchestrator interface {
	Begin(ctx context.Context, userID string, items []domain.CheckoutItem, availablePointsMinor int64) (domain.CheckoutSession, error)
	Get(sessionID string) (domain.CheckoutSession, error)
	Timeline(sessionID string) ([]domain.TimelineEvent, error)

	SelectAddress(ctx context.Context, sessionID, addressID string) (domain.CheckoutSession, error)
	CreateAddress(ctx context.Context, sessionID string, addr domain.Address) (domain.CheckoutSession, error)
	SelectShipping(ctx context.Context, sessionID, methodID string) (domain.CheckoutSession, error)

	UpdateItemQty(ctx context.Context, sessionID, productID, variantID string, qty int32) (domain.CheckoutSession, error)
	RemoveItem(ctx context.Context, sessionID, productID, variantID string) (domain.CheckoutSession, error)

	ApplyCoupon(ctx context.Context, sessionID, code string) (domain.CheckoutSession, error)
	RemoveCoupon(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
	SetRewardPoints(ctx context.Context, sessionID string, use bool, pointsMinor int64) (domain.CheckoutSession, error)
	SetPaymentMethod(ctx context.Context, sessionID, method string) (domain.CheckoutSession, error)
	SetNotes(ctx context.Context, sessionID, notes string) (domain.CheckoutSession, error)
	SetAgreeTerms(ctx context.Context, sessionID string, agree bool) (domain.CheckoutSession, error)

	Advance(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
	Retreat(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
	Commit(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
	Abandon(ctx context.Context, sessionID, reason string) (domain.CheckoutSession, error)
}

// orchestrator реализует пошаговый мастер: DeliveryInfo → Confirmation → Success.
type orchestrator struct {
	sessions domain.SessionRepository
	timeline domain.TimelineRepository
	outbox   domain.OutboxRepository

	addresses *address.Resolver
	shipping  *shipping.Resolver
	coupons   *coupon.Validator
	orders    domain.OrderService
	cart      domain.CartService

	calc    pricing.Calculator
	logger  *log.Entry
	metrics *metrics.CheckoutMetrics

	kafkaProducer *kafka.Producer // опциональный Kafka producer для event-driven архитектуры

	inFlight sync.Map // session_id -> struct{}
}

// Config собирает зависимости оркестратора.
type Config struct {
	Sessions domain.SessionRepository
	Timeline domain.TimelineRepository
	Outbox   domain.OutboxRepository

	Addresses *address.Resolver
	Shipping  *shipping.Resolver
	Coupons   *coupon.Validator
	Orders    domain.OrderService
	Cart      domain.CartService

	Calculator pricing.Calculator
	Logger     *log.Entry
	Metrics    *metrics.CheckoutMetrics

	// KafkaProducer опционален: без него события уходят только через outbox.
	KafkaProducer *kafka.Producer
}

// NewOrchestrator создаёт рабочий экземпляр оркестратора.
func NewOrchestrator(cfg Config) Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &orchestrator{
		sessions:      cfg.Sessions,
		timeline:      cfg.Timeline,
		outbox:        cfg.Outbox,
		addresses:     cfg.Addresses,
		shipping:      cfg.Shipping,
		coupons:       cfg.Coupons,
		orders:        cfg.Orders,
		cart:          cfg.Cart,
		calc:          cfg.Calculator,
		logger:        logger,
		metrics:       cfg.Metrics,
		kafkaProducer: cfg.KafkaProducer,
	}
}

// Begin создаёт новую сессию оформления для снимка корзины пользователя.
// Позиции копируются по значению: дальнейшие правки живой корзины на
// сессию не влияют.
func (o *orchestrator) Begin(ctx context.Context, userID string, items []domain.CheckoutItem, availablePointsMinor int64) (domain.CheckoutSession, error) {
	if userID == "" {
		return domain.CheckoutSession{}, domain.ErrUserRequired
	}
	if len(items) == 0 {
		return domain.CheckoutSession{}, domain.ErrItemsRequired
	}
	for _, item := range items {
		if item.Qty <= 0 {
			return domain.CheckoutSession{}, domain.ErrItemQtyInvalid
		}
		if item.UnitPriceMinor < 0 {
			return domain.CheckoutSession{}, domain.ErrItemPriceInvalid
		}
	}
	if availablePointsMinor < 0 {
		return domain.CheckoutSession{}, domain.ErrRewardPointsNegative
	}

	// Недоступность сохранённых адресов не блокирует оформление:
	// сессия стартует с пустым списком, пользователь вводит адрес вручную.
	var warnings []string
	addresses, selected, err := o.addresses.Load(ctx, userID)
	if err != nil {
		o.logger.WithError(err).WithField("user_id", userID).Warn("failed to load saved addresses, starting checkout without them")
		addresses, selected = nil, nil
		warnings = append(warnings, "saved addresses are unavailable, enter a delivery address manually")
	}

	now := time.Now().UTC()
	session := domain.CheckoutSession{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Status:               domain.SessionStatusActive,
		Step:                 domain.StepDeliveryInfo,
		Items:                append([]domain.CheckoutItem(nil), items...),
		Addresses:            addresses,
		SelectedAddress:      selected,
		AvailablePointsMinor: availablePointsMinor,
		Warnings:             warnings,
		CreatedAt:            now,
		UpdatedAt:            now,
		LastActivityAt:       now,
	}

	if selected != nil {
		resolution := o.shipping.Resolve(ctx, selected.ID)
		session.ShippingMethods = resolution.Methods
		session.ShippingSource = resolution.Source
	}

	session.Summary = o.calc.Compute(session.Items, session.SelectedShipping, session.AppliedCoupon, session.RewardPointsMinor, session.UseRewardPoints)

	if err := o.sessions.Create(session); err != nil {
		return domain.CheckoutSession{}, err
	}

	o.metrics.RecordCheckoutStarted()
	o.emitEvent(&session, kafka.EventTypeCheckoutStarted, "", map[string]interface{}{
		"items_count":    len(session.Items),
		"subtotal_minor": session.Summary.SubtotalMinor,
	})

	o.logger.WithFields(log.Fields{
		"session_id": session.ID,
		"user_id":    userID,
		"items":      len(session.Items),
	}).Info("checkout session started")

	return session, nil
}

// Get возвращает снимок сессии без захвата single-flight.
func (o *orchestrator) Get(sessionID string) (domain.CheckoutSession, error) {
	return o.sessions.Get(sessionID)
}

// Timeline возвращает события жизненного цикла сессии.
func (o *orchestrator) Timeline(sessionID string) ([]domain.TimelineEvent, error) {
	if _, err := o.sessions.Get(sessionID); err != nil {
		return nil, err
	}
	return o.timeline.List(sessionID)
}

// SelectAddress выбирает адрес из загруженного списка. Смена адреса
// инвалидирует способы доставки: список и выбор обнуляются, затем
// список загружается заново для нового адреса.
func (o *orchestrator) SelectAddress(ctx context.Context, sessionID, addressID string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "select_address", func(s *domain.CheckoutSession) error {
		var picked *domain.Address
		for i := range s.Addresses {
			if s.Addresses[i].ID == addressID {
				addr := s.Addresses[i]
				picked = &addr
				break
			}
		}
		if picked == nil {
			return domain.ErrAddressNotFound
		}

		s.SelectedAddress = picked
		s.SelectedShipping = nil
		s.ShippingMethods = nil

		resolution := o.shipping.Resolve(ctx, picked.ID)
		s.ShippingMethods = resolution.Methods
		s.ShippingSource = resolution.Source
		return nil
	})
}

// CreateAddress сохраняет новый адрес на удалённом API, добавляет его в
// сессию и сразу выбирает.
func (o *orchestrator) CreateAddress(ctx context.Context, sessionID string, addr domain.Address) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "create_address", func(s *domain.CheckoutSession) error {
		created, err := o.addresses.Create(ctx, s.UserID, addr)
		if err != nil {
			return err
		}

		s.Addresses = append(s.Addresses, created)
		s.SelectedAddress = &created
		s.SelectedShipping = nil
		s.ShippingMethods = nil

		resolution := o.shipping.Resolve(ctx, created.ID)
		s.ShippingMethods = resolution.Methods
		s.ShippingSource = resolution.Source
		return nil
	})
}

// SelectShipping выбирает способ доставки из актуального списка сессии.
func (o *orchestrator) SelectShipping(ctx context.Context, sessionID, methodID string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "select_shipping", func(s *domain.CheckoutSession) error {
		for i := range s.ShippingMethods {
			if s.ShippingMethods[i].ID == methodID {
				method := s.ShippingMethods[i]
				s.SelectedShipping = &method
				return nil
			}
		}
		return domain.ErrShippingMethodNotFound
	})
}

// UpdateItemQty меняет количество позиции. Применённый купон после смены
// состава перепроверяется.
func (o *orchestrator) UpdateItemQty(ctx context.Context, sessionID, productID, variantID string, qty int32) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "update_item_qty", func(s *domain.CheckoutSession) error {
		if qty <= 0 {
			return domain.ErrItemQtyInvalid
		}
		idx, ok := s.FindItem(productID, variantID)
		if !ok {
			return domain.ErrItemNotFound
		}
		s.Items[idx].Qty = qty
		o.revalidateCoupon(ctx, s)
		return nil
	})
}

// RemoveItem убирает позицию из сессии. Удаление последней позиции
// завершает сессию как abandoned: оформлять больше нечего.
func (o *orchestrator) RemoveItem(ctx context.Context, sessionID, productID, variantID string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "remove_item", func(s *domain.CheckoutSession) error {
		idx, ok := s.FindItem(productID, variantID)
		if !ok {
			return domain.ErrItemNotFound
		}
		s.Items = append(s.Items[:idx], s.Items[idx+1:]...)

		if len(s.Items) == 0 {
			o.markAbandoned(s, "cart emptied")
			return nil
		}

		o.revalidateCoupon(ctx, s)
		return nil
	})
}

// ApplyCoupon валидирует промокод на удалённом API. Отказ не меняет
// состояние сессии: прежний купон (если был) остаётся применённым.
func (o *orchestrator) ApplyCoupon(ctx context.Context, sessionID, code string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "apply_coupon", func(s *domain.CheckoutSession) error {
		validated, err := o.coupons.Validate(ctx, code, s.Items)
		if err != nil {
			if _, ok := domain.IsCouponRejected(err); ok {
				o.metrics.RecordCouponRejected()
				o.emitEvent(s, kafka.EventTypeCouponRejected, code, map[string]interface{}{
					"code": code,
				})
			}
			return err
		}

		s.AppliedCoupon = &validated
		o.metrics.RecordCouponApplied()
		o.emitEvent(s, kafka.EventTypeCouponApplied, "", map[string]interface{}{
			"code": validated.Code,
			"type": string(validated.Type),
		})
		return nil
	})
}

// RemoveCoupon снимает применённый промокод.
func (o *orchestrator) RemoveCoupon(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "remove_coupon", func(s *domain.CheckoutSession) error {
		s.AppliedCoupon = nil
		return nil
	})
}

// SetRewardPoints задаёт списание бонусных баллов. Сумма не может
// превышать ни доступный баланс, ни subtotal.
func (o *orchestrator) SetRewardPoints(ctx context.Context, sessionID string, use bool, pointsMinor int64) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "set_reward_points", func(s *domain.CheckoutSession) error {
		if pointsMinor < 0 {
			return domain.ErrRewardPointsNegative
		}
		maxPoints := pricing.MaxRewardPoints(s.SubtotalMinor(), s.AvailablePointsMinor)
		if pointsMinor > maxPoints {
			return domain.ErrRewardPointsExceeded
		}
		s.UseRewardPoints = use
		s.RewardPointsMinor = pointsMinor
		return nil
	})
}

// SetPaymentMethod запоминает выбранный способ оплаты.
func (o *orchestrator) SetPaymentMethod(ctx context.Context, sessionID, method string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "set_payment_method", func(s *domain.CheckoutSession) error {
		s.PaymentMethod = method
		return nil
	})
}

// SetNotes сохраняет комментарий пользователя к заказу.
func (o *orchestrator) SetNotes(ctx context.Context, sessionID, notes string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "set_notes", func(s *domain.CheckoutSession) error {
		s.Notes = notes
		return nil
	})
}

// SetAgreeTerms фиксирует согласие с условиями продажи.
func (o *orchestrator) SetAgreeTerms(ctx context.Context, sessionID string, agree bool) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "set_agree_terms", func(s *domain.CheckoutSession) error {
		s.AgreeTerms = agree
		return nil
	})
}

// Advance переводит сессию с шага DeliveryInfo на Confirmation.
// Непройденные предусловия возвращаются одной ValidationError с картой
// "поле -> причина".
func (o *orchestrator) Advance(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "advance", func(s *domain.CheckoutSession) error {
		if s.Step != domain.StepDeliveryInfo {
			return nil
		}
		if errs := s.ValidateForAdvance(); len(errs) > 0 {
			return domain.NewValidationError(errs)
		}
		s.Step = domain.StepConfirmation
		o.emitEvent(s, kafka.EventTypeCheckoutAdvanced, "", map[string]interface{}{
			"step": int32(s.Step),
		})
		return nil
	})
}

// Retreat возвращает сессию с Confirmation на DeliveryInfo.
// Выборы пользователя при этом сохраняются.
func (o *orchestrator) Retreat(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "retreat", func(s *domain.CheckoutSession) error {
		if s.Step != domain.StepConfirmation {
			return nil
		}
		s.Step = domain.StepDeliveryInfo
		o.emitEvent(s, kafka.EventTypeCheckoutRetreated, "", map[string]interface{}{
			"step": int32(s.Step),
		})
		return nil
	})
}

// Commit создаёт заказ на удалённом API и завершает сессию. Перед
// отправкой состояние перепроверяется целиком. Провал создания заказа
// не трогает сессию: пользователь остаётся на Confirmation и может
// повторить попытку. Идемпотентность повторов обеспечивает ключ,
// детерминированно равный идентификатору сессии.
func (o *orchestrator) Commit(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "commit", func(s *domain.CheckoutSession) error {
		start := time.Now()

		if errs := s.ValidateForCommit(); len(errs) > 0 {
			return domain.NewValidationError(errs)
		}

		req := buildOrderRequest(s)
		if errs := req.ValidateInvariants(); len(errs) > 0 {
			return errs[0]
		}

		result, err := o.orders.Create(ctx, req)
		if err != nil {
			o.metrics.RecordCommitFailed()
			o.emitEvent(s, kafka.EventTypeOrderCommitError, err.Error(), map[string]interface{}{
				"error": err.Error(),
			})
			o.logger.WithError(err).WithField("session_id", s.ID).Warn("order commit failed")
			return fmt.Errorf("%w: %w", domain.ErrCommitFailed, err)
		}

		s.Status = domain.SessionStatusCompleted
		s.Step = domain.StepSuccess
		s.Result = &result

		o.pruneCart(ctx, s)

		o.metrics.RecordCheckoutCompleted()
		o.metrics.RecordCommitDuration(time.Since(start))
		o.emitEvent(s, kafka.EventTypeOrderCommitted, "", map[string]interface{}{
			"order_id":     result.ID,
			"order_number": result.OrderNumber,
			"total_minor":  result.TotalMinor,
		})

		o.logger.WithFields(log.Fields{
			"session_id":  s.ID,
			"order_id":    result.ID,
			"total_minor": result.TotalMinor,
		}).Info("checkout committed")
		return nil
	})
}

// Abandon завершает сессию без заказа.
func (o *orchestrator) Abandon(ctx context.Context, sessionID, reason string) (domain.CheckoutSession, error) {
	return o.mutate(sessionID, "abandon", func(s *domain.CheckoutSession) error {
		o.markAbandoned(s, reason)
		return nil
	})
}

// mutate выполняет мутацию сессии под single-flight: загрузка, проверка
// терминальности, вызов fn, пересчёт summary и сохранение.
func (o *orchestrator) mutate(sessionID, operation string, fn func(*domain.CheckoutSession) error) (domain.CheckoutSession, error) {
	if _, busy := o.inFlight.LoadOrStore(sessionID, struct{}{}); busy {
		return domain.CheckoutSession{}, domain.ErrSessionBusy
	}
	defer o.inFlight.Delete(sessionID)

	start := time.Now()
	defer func() {
		o.metrics.RecordStepDuration(operation, time.Since(start))
	}()

	session, err := o.sessions.Get(sessionID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	if session.Terminal() {
		return session, domain.ErrSessionTerminal
	}

	if err := fn(&session); err != nil {
		return session, err
	}

	o.recompute(&session)

	now := time.Now().UTC()
	session.UpdatedAt = now
	session.LastActivityAt = now

	if err := o.sessions.Save(session); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"session_id": sessionID,
			"operation":  operation,
		}).Error("failed to persist session")
		return session, err
	}
	session.Version++

	return session, nil
}

// recompute пересобирает summary целиком и подрезает списание баллов,
// если после правок состава оно превысило допустимый максимум.
func (o *orchestrator) recompute(s *domain.CheckoutSession) {
	if s.Status == domain.SessionStatusAbandoned {
		return
	}

	maxPoints := pricing.MaxRewardPoints(s.SubtotalMinor(), s.AvailablePointsMinor)
	if s.RewardPointsMinor > maxPoints {
		s.RewardPointsMinor = maxPoints
	}

	s.Summary = o.calc.Compute(s.Items, s.SelectedShipping, s.AppliedCoupon, s.RewardPointsMinor, s.UseRewardPoints)
}

// revalidateCoupon перепроверяет купон после изменения состава. Отказ
// снимает купон; транспортный сбой купон не трогает, финальную проверку
// всё равно делает удалённый API при создании заказа.
func (o *orchestrator) revalidateCoupon(ctx context.Context, s *domain.CheckoutSession) {
	if s.AppliedCoupon == nil {
		return
	}

	validated, err := o.coupons.Validate(ctx, s.AppliedCoupon.Code, s.Items)
	if err != nil {
		if _, ok := domain.IsCouponRejected(err); ok {
			code := s.AppliedCoupon.Code
			s.AppliedCoupon = nil
			o.metrics.RecordCouponRejected()
			o.emitEvent(s, kafka.EventTypeCouponRejected, "items changed", map[string]interface{}{
				"code": code,
			})
		}
		return
	}
	s.AppliedCoupon = &validated
}

// markAbandoned переводит сессию в терминальное состояние abandoned.
func (o *orchestrator) markAbandoned(s *domain.CheckoutSession, reason string) {
	if s.Terminal() {
		return
	}
	s.Status = domain.SessionStatusAbandoned
	o.metrics.RecordCheckoutAbandoned()
	o.emitEvent(s, kafka.EventTypeCheckoutAbandoned, reason, map[string]interface{}{
		"reason": reason,
	})
	o.logger.WithFields(log.Fields{
		"session_id": s.ID,
		"reason":     reason,
	}).Info("checkout session abandoned")
}

// pruneCart выборочно удаляет оформленные позиции из живой корзины.
// Ошибки некритичны: заказ уже создан, откат невозможен, проблемы
// копятся в Warnings.
func (o *orchestrator) pruneCart(ctx context.Context, s *domain.CheckoutSession) {
	var failed int
	for _, item := range s.Items {
		if err := o.cart.RemoveItem(ctx, s.UserID, item.ProductID, item.VariantID); err != nil {
			failed++
			warning := fmt.Sprintf("cart item %s was not removed: %v", item.ProductID, err)
			s.Warnings = append(s.Warnings, warning)
			o.logger.WithError(err).WithFields(log.Fields{
				"session_id": s.ID,
				"product_id": item.ProductID,
			}).Warn("cart prune failed for item")
		}
	}

	if failed > 0 {
		o.emitEvent(s, kafka.EventTypeCartPruneFailed, "", map[string]interface{}{
			"failed_items": failed,
		})
		return
	}
	o.emitEvent(s, kafka.EventTypeCartPruned, "", map[string]interface{}{
		"items": len(s.Items),
	})
}

// buildOrderRequest собирает неизменяемый payload заказа из
// провалидированной сессии.
func buildOrderRequest(s *domain.CheckoutSession) domain.OrderRequest {
	items := make([]domain.OrderRequestItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, domain.OrderRequestItem{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	req := domain.OrderRequest{
		IdempotencyKey:    s.ID,
		UserID:            s.UserID,
		Items:             items,
		ShippingAddressID: s.SelectedAddress.ID,
		BillingAddressID:  s.SelectedAddress.ID,
		ShippingMethodID:  s.SelectedShipping.ID,
		PaymentMethod:     s.PaymentMethod,
		UseRewardPoints:   s.UseRewardPoints,
		RewardPointsMinor: s.RewardPointsMinor,
		Notes:             s.Notes,
	}
	if s.AppliedCoupon != nil {
		req.CouponCode = s.AppliedCoupon.Code
	}
	if !s.UseRewardPoints {
		req.RewardPointsMinor = 0
	}
	return req
}

// emitEvent сохраняет событие в outbox и timeline и, если настроен
// producer, дублирует его напрямую в Kafka.
func (o *orchestrator) emitEvent(s *domain.CheckoutSession, eventType kafka.EventType, reason string, metadata map[string]interface{}) {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["session_id"] = s.ID
	metadata["user_id"] = s.UserID

	occurred := time.Now().UTC()

	data, err := json.Marshal(metadata)
	if err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"session_id": s.ID,
			"event":      eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "checkout_session",
		AggregateID:   s.ID,
		EventType:     string(eventType),
		Payload:       data,
	}
	if _, err := o.outbox.Enqueue(msg); err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"session_id": s.ID,
			"event":      eventType,
		}).Error("enqueue event failed")
	} else {
		o.metrics.RecordOutboxEvent()
	}

	if o.timeline != nil {
		event := domain.TimelineEvent{
			SessionID: s.ID,
			Type:      string(eventType),
			Reason:    reason,
			Occurred:  occurred,
		}
		if err := o.timeline.Append(event); err != nil {
			o.logger.WithError(err).WithFields(log.Fields{
				"session_id": s.ID,
				"event":      eventType,
			}).Warn("append timeline event failed")
		} else {
			o.metrics.RecordTimelineEvent()
		}
	}

	o.publishEvent(eventType, s.ID, s.UserID, metadata)
}

// publishEvent публикует событие в Kafka (если producer настроен).
func (o *orchestrator) publishEvent(eventType kafka.EventType, sessionID, userID string, metadata map[string]interface{}) {
	if o.kafkaProducer == nil {
		return
	}

	event := kafka.NewCheckoutEvent(eventType, sessionID, userID, metadata)
	if err := o.kafkaProducer.PublishCheckoutEvent(event); err != nil {
		// Kafka опциональна: сбой публикации не прерывает операцию
		o.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"session_id": sessionID,
		}).Warn("failed to publish checkout event to kafka")
	}
}

var _ Orchestrator = (*orchestrator)(nil)
