package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// GetReviews возвращает отзывы о товаре.
func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetReviews(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// GetRating возвращает среднюю оценку товара.
func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetRating(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CreateReview сохраняет отзыв.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req model.Review
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// MarkReviewHelpful отмечает отзыв как полезный.
func (h *Handler) MarkReviewHelpful(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.MarkReviewHelpful(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}
