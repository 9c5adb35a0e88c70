package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/storefront-system/internal/model"
)

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// quantity возвращает количество из запроса или ErrValidation, если поле не передано.
func (r cartItemRequest) quantity() (int, error) {
	if r.Quantity == nil {
		return 0, fmt.Errorf("%w: quantity is required", model.ErrValidation)
	}
	return *r.Quantity, nil
}

// GetCart возвращает корзину пользователя.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// cartAction оборачивает операцию над корзиной, принимающую тело cartItemRequest.
func (h *Handler) cartAction(fn func(ctx context.Context, userID string, req cartItemRequest) (*model.Cart, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartItemRequest
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}

		cart, err := fn(r.Context(), chi.URLParam(r, "userID"), req)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cart)
	}
}

// AddToCart добавляет товар в корзину.
func (h *Handler) AddToCart() http.HandlerFunc {
	return h.cartAction(func(ctx context.Context, userID string, req cartItemRequest) (*model.Cart, error) {
		quantity, err := req.quantity()
		if err != nil {
			return nil, err
		}
		return h.service.AddToCart(ctx, userID, req.ProductID, quantity)
	})
}

// RemoveFromCart удаляет позицию из корзины.
func (h *Handler) RemoveFromCart() http.HandlerFunc {
	return h.cartAction(func(ctx context.Context, userID string, req cartItemRequest) (*model.Cart, error) {
		return h.service.RemoveFromCart(ctx, userID, req.ProductID)
	})
}

// UpdateCartItem задаёт количество позиции.
func (h *Handler) UpdateCartItem() http.HandlerFunc {
	return h.cartAction(func(ctx context.Context, userID string, req cartItemRequest) (*model.Cart, error) {
		quantity, err := req.quantity()
		if err != nil {
			return nil, err
		}
		return h.service.UpdateCartItem(ctx, userID, req.ProductID, quantity)
	})
}

// SaveForLater переносит позицию в отложенные.
func (h *Handler) SaveForLater() http.HandlerFunc {
	return h.cartAction(func(ctx context.Context, userID string, req cartItemRequest) (*model.Cart, error) {
		return h.service.SaveForLater(ctx, userID, req.ProductID)
	})
}

// MoveToCart возвращает отложенную позицию в корзину.
func (h *Handler) MoveToCart() http.HandlerFunc {
	return h.cartAction(func(ctx context.Context, userID string, req cartItemRequest) (*model.Cart, error) {
		return h.service.MoveToCart(ctx, userID, req.ProductID)
	})
}

// RemoveFromSaved удаляет позицию из отложенных.
func (h *Handler) RemoveFromSaved() http.HandlerFunc {
	return h.cartAction(func(ctx context.Context, userID string, req cartItemRequest) (*model.Cart, error) {
		return h.service.RemoveFromSaved(ctx, userID, req.ProductID)
	})
}

// ClearCart очищает корзину.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}
