package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/payment"
	"github.com/mmeshcher/storefront-system/internal/service"
)

// IdempotencyKeyHeader задаёт ключ повторного оформления заказа.
const IdempotencyKeyHeader = "Idempotency-Key"

type checkoutRequest struct {
	UserID          string `json:"userId"`
	AddressID       string `json:"addressId"`
	PaymentMethodID string `json:"paymentMethodId"`
	PaymentMethod   *struct {
		MethodType model.PaymentMethodType `json:"methodType"`
	} `json:"paymentMethod"`
}

// Checkout оформляет заказ из корзины пользователя.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	in := service.CheckoutRequest{
		UserID:          req.UserID,
		AddressID:       req.AddressID,
		PaymentMethodID: req.PaymentMethodID,
		IdempotencyKey:  r.Header.Get(IdempotencyKeyHeader),
	}
	if req.PaymentMethod != nil {
		in.MethodType = req.PaymentMethod.MethodType
	}

	order, err := h.service.Checkout(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// GetOrders возвращает заказы пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetOrders(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder возвращает заказ пользователя.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ProcessPayment проводит платёж через платёжный шлюз.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req payment.Request
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.ProcessPayment(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PaymentStatus возвращает статус платежа.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.PaymentStatus(r.Context(), chi.URLParam(r, "paymentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
