package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetProducts возвращает товары каталога.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct возвращает товар каталога.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}
