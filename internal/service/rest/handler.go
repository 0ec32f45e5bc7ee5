package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
)

// Handler обслуживает HTTP API оформления заказа.
type Handler struct {
	orch   checkout.Orchestrator
	logger *log.Entry
}

// NewHandler создаёт HTTP handler поверх оркестратора.
func NewHandler(orch checkout.Orchestrator, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}
	return &Handler{
		orch:   orch,
		logger: logger,
	}
}

type beginRequest struct {
	UserID               string    `json:"user_id"`
	Items                []itemDTO `json:"items"`
	AvailablePointsMinor int64     `json:"available_points_minor"`
}

type selectAddressRequest struct {
	AddressID string `json:"address_id"`
}

type selectShippingRequest struct {
	MethodID string `json:"method_id"`
}

type updateItemRequest struct {
	VariantID string `json:"variant_id"`
	Qty       int32  `json:"qty"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type rewardPointsRequest struct {
	Use         bool  `json:"use"`
	PointsMinor int64 `json:"points_minor"`
}

type preferencesRequest struct {
	PaymentMethod *string `json:"payment_method,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	AgreeTerms    *bool   `json:"agree_terms,omitempty"`
}

type abandonRequest struct {
	Reason string `json:"reason"`
}

// Begin обрабатывает POST /api/v1/checkout/sessions.
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	items := make([]domain.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CheckoutItem{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           item.Name,
			SKU:            item.SKU,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	session, err := h.orch.Begin(r.Context(), req.UserID, items, req.AvailablePointsMinor)
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSessionDTO(session))
}

// GetSession обрабатывает GET /api/v1/checkout/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// GetTimeline обрабатывает GET /api/v1/checkout/sessions/{sessionID}/timeline.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.orch.Timeline(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondFromError(w, err)
		return
	}

	dtos := make([]timelineEventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, timelineEventDTO{
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	respondJSON(w, http.StatusOK, dtos)
}

// SelectAddress обрабатывает PUT .../address.
func (h *Handler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	var req selectAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := h.orch.SelectAddress(r.Context(), chi.URLParam(r, "sessionID"), req.AddressID)
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// CreateAddress обрабатывает POST .../addresses.
func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := h.orch.CreateAddress(r.Context(), chi.URLParam(r, "sessionID"), domain.Address{
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		Ward:         req.Ward,
		District:     req.District,
		City:         req.City,
		PostalCode:   req.PostalCode,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSessionDTO(session))
}

// SelectShipping обрабатывает PUT .../shipping.
func (h *Handler) SelectShipping(w http.ResponseWriter, r *http.Request) {
	var req selectShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := h.orch.SelectShipping(r.Context(), chi.URLParam(r, "sessionID"), req.MethodID)
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// UpdateItem обрабатывает PUT .../items/{productID}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := h.orch.UpdateItemQty(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "productID"), req.VariantID, req.Qty)
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// RemoveItem обрабатывает DELETE .../items/{productID}?variant_id=...
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.RemoveItem(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "productID"), r.URL.Query().Get("variant_id"))
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// ApplyCoupon обрабатывает POST .../coupon.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := h.orch.ApplyCoupon(r.Context(), chi.URLParam(r, "sessionID"), req.Code)
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// RemoveCoupon обрабатывает DELETE .../coupon.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.RemoveCoupon(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// SetRewardPoints обрабатывает PUT .../reward-points.
func (h *Handler) SetRewardPoints(w http.ResponseWriter, r *http.Request) {
	var req rewardPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := h.orch.SetRewardPoints(r.Context(), chi.URLParam(r, "sessionID"), req.Use, req.PointsMinor)
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// SetPreferences обрабатывает PUT .../preferences: способ оплаты,
// комментарий и согласие с условиями, все поля опциональны.
func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	var (
		session domain.CheckoutSession
		err     error
		touched bool
	)

	if req.PaymentMethod != nil {
		session, err = h.orch.SetPaymentMethod(r.Context(), sessionID, *req.PaymentMethod)
		if err != nil {
			h.respondFromError(w, err)
			return
		}
		touched = true
	}
	if req.Notes != nil {
		session, err = h.orch.SetNotes(r.Context(), sessionID, *req.Notes)
		if err != nil {
			h.respondFromError(w, err)
			return
		}
		touched = true
	}
	if req.AgreeTerms != nil {
		session, err = h.orch.SetAgreeTerms(r.Context(), sessionID, *req.AgreeTerms)
		if err != nil {
			h.respondFromError(w, err)
			return
		}
		touched = true
	}

	if !touched {
		session, err = h.orch.Get(sessionID)
		if err != nil {
			h.respondFromError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// Advance обрабатывает POST .../advance.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.Advance(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// Retreat обрабатывает POST .../retreat.
func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.Retreat(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// Commit обрабатывает POST .../commit.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.Commit(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// Abandon обрабатывает POST .../abandon.
func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	var req abandonRequest
	if r.Body != nil {
		// Тело опционально
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	session, err := h.orch.Abandon(r.Context(), chi.URLParam(r, "sessionID"), req.Reason)
	if err != nil {
		h.respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// respondFromError переводит доменные ошибки в HTTP статусы.
func (h *Handler) respondFromError(w http.ResponseWriter, err error) {
	if verr, ok := domain.AsValidation(err); ok {
		respondJSONEnvelope(w, http.StatusUnprocessableEntity, envelope{
			Success: false,
			Message: verr.Error(),
			Data:    map[string]interface{}{"errors": verr.Fields},
		})
		return
	}
	if rejected, ok := domain.IsCouponRejected(err); ok {
		respondJSONEnvelope(w, http.StatusUnprocessableEntity, envelope{
			Success: false,
			Message: rejected.Error(),
			Data: map[string]interface{}{
				"code":   rejected.Code,
				"reason": string(rejected.Reason),
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrAddressNotFound),
		errors.Is(err, domain.ErrShippingMethodNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSessionBusy),
		errors.Is(err, domain.ErrSessionTerminal),
		errors.Is(err, domain.ErrSessionVersionConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrCommitFailed),
		domain.IsGatewayFailure(err):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrUserRequired),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrItemQtyInvalid),
		errors.Is(err, domain.ErrItemPriceInvalid),
		errors.Is(err, domain.ErrRewardPointsNegative),
		errors.Is(err, domain.ErrRewardPointsExceeded),
		errors.Is(err, domain.ErrAddressNameRequired),
		errors.Is(err, domain.ErrAddressPhoneRequired),
		errors.Is(err, domain.ErrAddressLineRequired),
		errors.Is(err, domain.ErrAddressCityRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error("unhandled error")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	respondJSONEnvelope(w, status, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSONEnvelope(w, status, envelope{Success: false, Message: message})
}

func respondJSONEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
