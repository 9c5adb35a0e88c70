// Package handler содержит HTTP-обработчики API витрины магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/payment"
	"github.com/mmeshcher/storefront-system/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	GetProducts(ctx context.Context, category string) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error)
	RemoveFromCart(ctx context.Context, userID, productID string) (*model.Cart, error)
	UpdateCartItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error)
	SaveForLater(ctx context.Context, userID, productID string) (*model.Cart, error)
	MoveToCart(ctx context.Context, userID, productID string) (*model.Cart, error)
	RemoveFromSaved(ctx context.Context, userID, productID string) (*model.Cart, error)
	ClearCart(ctx context.Context, userID string) (*model.Cart, error)

	Checkout(ctx context.Context, req service.CheckoutRequest) (*model.Order, error)
	GetOrders(ctx context.Context, userID string) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error)

	ProcessPayment(ctx context.Context, req payment.Request) (*payment.Result, error)
	PaymentStatus(ctx context.Context, paymentID string) (*payment.Result, error)

	GetAddresses(ctx context.Context, userID string) ([]model.Address, error)
	GetAddress(ctx context.Context, id string) (*model.Address, error)
	CreateAddress(ctx context.Context, a model.Address) (*model.Address, error)
	UpdateAddress(ctx context.Context, id string, patch model.AddressPatch) (*model.Address, error)
	DeleteAddress(ctx context.Context, id string) error
	SetDefaultAddress(ctx context.Context, userID, id string) (*model.Address, error)

	GetPaymentMethods(ctx context.Context, userID string) ([]model.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id string) (*model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, m model.PaymentMethod) (*model.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id string, patch model.PaymentMethodPatch) (*model.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id string) error
	SetDefaultPaymentMethod(ctx context.Context, userID, id string) (*model.PaymentMethod, error)

	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, patch model.ProfilePatch) (*model.UserProfile, error)
	TouchLastLogin(ctx context.Context, userID string) (*model.UserProfile, error)

	GetReviews(ctx context.Context, productID string) ([]model.Review, error)
	GetRating(ctx context.Context, productID string) (model.RatingSummary, error)
	CreateReview(ctx context.Context, rv model.Review) (*model.Review, error)
	MarkReviewHelpful(ctx context.Context, id string) (*model.Review, error)
}

// Handler реализует HTTP-обработчики API витрины.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError отображает доменную ошибку в HTTP-статус. Внутренние ошибки логируются,
// а клиент получает только текст статуса.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrEmptyCart):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// decodeJSON читает тело запроса. Пустое тело допускается и оставляет dst без изменений.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed request body: %w", model.ErrValidation, err)
	}
	return nil
}

// Health сообщает, что сервис запущен.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Server is running"})
}
