package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/neoshop/neoshop-platform/internal/api/middleware"
	"github.com/neoshop/neoshop-platform/internal/errors"
	"github.com/neoshop/neoshop-platform/internal/models"
	service "github.com/neoshop/neoshop-platform/internal/services"
	"github.com/neoshop/neoshop-platform/internal/utils"
	"github.com/neoshop/neoshop-platform/internal/utils/response"
)

type OrderHandler struct {
	orderService *service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req models.CreateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.CreateOrder(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		logger := middleware.LoggerFromContext(r.Context())
		logger.Info("Order placed",
			slog.String("userId", claims.UserID.String()),
			slog.String("orderNumber", order.OrderNumber))

		response.Success(w, http.StatusCreated, order)
	}
}

func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := currentUser(w, r)
		if !ok {
			return
		}

		orderID, ok := pathID(w, r)
		if !ok {
			return
		}

		order, err := h.orderService.GetOrder(r.Context(), claims.UserID, orderID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := currentUser(w, r)
		if !ok {
			return
		}

		page := queryInt(r, "page", 1)
		size := queryInt(r, "page_size", 10)
		status := models.OrderStatus(r.URL.Query().Get("status"))

		history, err := h.orderService.ListOrders(r.Context(), claims.UserID, page, size, status)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, history)
	}
}

func (h *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := currentUser(w, r)
		if !ok {
			return
		}

		orderID, ok := pathID(w, r)
		if !ok {
			return
		}

		// The reason is optional; an empty body is a valid cancellation.
		var req models.CancelOrderRequest

		_ = utils.DecodeJSONBody(r, &req)

		order, err := h.orderService.CancelOrder(r.Context(), claims.UserID, orderID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) ReturnOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := currentUser(w, r)
		if !ok {
			return
		}

		orderID, ok := pathID(w, r)
		if !ok {
			return
		}

		var req models.ReturnOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.ReturnOrder(r.Context(), claims.UserID, orderID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// UpdateStatus is the admin endpoint for moving an order along the
// fulfilment path.
func (h *OrderHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(w, r)
		if !ok {
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateStatus(r.Context(), orderID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// PaymentWebhook receives gateway callbacks. Unauthenticated; trust comes
// from the signature check, not a bearer token.
func (h *OrderHandler) PaymentWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			response.Error(w, errors.BadRequestError("Failed to read request body").WithError(err))

			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			response.Error(w, errors.BadRequestError("Stripe signature is required"))

			return
		}

		event, err := h.orderService.ProcessPaymentWebhook(r.Context(), payload, signature)
		if err != nil {
			logger.Error("Failed to process payment webhook",
				slog.String("eventId", event.ID),
				slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Payment webhook processed", slog.String("eventId", event.ID))
		response.Success(w, http.StatusOK, map[string]bool{"success": true})
	}
}
