package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// GetProfile возвращает профиль пользователя с пересчитанной статистикой.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile частично обновляет профиль.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch model.ProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), chi.URLParam(r, "userID"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// TouchLastLogin фиксирует время последнего входа.
func (h *Handler) TouchLastLogin(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.TouchLastLogin(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
