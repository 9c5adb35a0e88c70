package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
)

type setDefaultRequest struct {
	UserID string `json:"userId"`
}

// GetAddresses возвращает адреса пользователя.
func (h *Handler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.service.GetAddresses(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}

// GetAddress возвращает адрес.
func (h *Handler) GetAddress(w http.ResponseWriter, r *http.Request) {
	address, err := h.service.GetAddress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, address)
}

// CreateAddress создаёт адрес.
func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req model.Address
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	address, err := h.service.CreateAddress(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, address)
}

// UpdateAddress частично обновляет адрес.
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var patch model.AddressPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	address, err := h.service.UpdateAddress(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, address)
}

// DeleteAddress удаляет адрес.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAddress(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Address deleted successfully")
}

// SetDefaultAddress делает адрес адресом по умолчанию.
func (h *Handler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	var req setDefaultRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	address, err := h.service.SetDefaultAddress(r.Context(), req.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, address)
}
