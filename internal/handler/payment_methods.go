package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// GetPaymentMethods возвращает способы оплаты пользователя.
func (h *Handler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.GetPaymentMethods(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

// GetPaymentMethod возвращает способ оплаты.
func (h *Handler) GetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	method, err := h.service.GetPaymentMethod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, method)
}

// CreatePaymentMethod создаёт способ оплаты. Вариант данных выбирается по methodType.
func (h *Handler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentMethod
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	method, err := h.service.CreatePaymentMethod(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, method)
}

// UpdatePaymentMethod частично обновляет способ оплаты.
func (h *Handler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var patch model.PaymentMethodPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	method, err := h.service.UpdatePaymentMethod(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, method)
}

// DeletePaymentMethod удаляет способ оплаты.
func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePaymentMethod(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Payment method deleted successfully")
}

// SetDefaultPaymentMethod делает способ оплаты способом по умолчанию.
func (h *Handler) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req setDefaultRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	method, err := h.service.SetDefaultPaymentMethod(r.Context(), req.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, method)
}
