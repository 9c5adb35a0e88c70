// Package service реализует бизнес-логику витрины магазина.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/payment"
)

// Catalog описывает источник товаров каталога.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, category string) ([]model.Product, error)
}

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Catalog
	Close() error

	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	EnsureCart(ctx context.Context, userID string, now time.Time) (*model.Cart, error)
	UpdateCart(ctx context.Context, userID string, now time.Time, fn func(*model.Cart) error) (*model.Cart, error)

	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
	GetOrderByCheckoutKey(ctx context.Context, userID, key string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)

	UpdateProfile(ctx context.Context, userID string, now time.Time, fn func(*model.UserProfile) error) (*model.UserProfile, error)

	SetDefault(ctx context.Context, c model.Collection, userID, id string) error

	GetAddress(ctx context.Context, id string) (*model.Address, error)
	ListAddresses(ctx context.Context, userID string) ([]model.Address, error)
	CreateAddress(ctx context.Context, a *model.Address) error
	UpdateAddress(ctx context.Context, a *model.Address) error
	DeleteAddress(ctx context.Context, id string) error

	GetPaymentMethod(ctx context.Context, id string) (*model.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id string) error

	CreateReview(ctx context.Context, rv *model.Review) error
	ListReviewsByProduct(ctx context.Context, productID string) ([]model.Review, error)
	IncrementReviewHelpful(ctx context.Context, id string) (*model.Review, error)
}

// Locker захватывает эксклюзивную блокировку по ключу.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Payments описывает платёжный шлюз.
type Payments interface {
	Process(ctx context.Context, req payment.Request) (*payment.Result, error)
	Status(ctx context.Context, paymentID string) (*payment.Result, error)
}

// Service содержит бизнес-логику витрины.
type Service struct {
	repo     Repository
	catalog  Catalog
	locker   Locker
	payments Payments
	logger   *zap.Logger
	now      func() time.Time
}

// NewService создаёт сервис. Если catalog равен nil, товары читаются из репозитория.
func NewService(repo Repository, catalog Catalog, locker Locker, payments Payments, logger *zap.Logger) *Service {
	if catalog == nil {
		catalog = repo
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:     repo,
		catalog:  catalog,
		locker:   locker,
		payments: payments,
		logger:   logger,
		now:      time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// withUserLock выполняет fn, удерживая блокировку пользователя.
func (s *Service) withUserLock(ctx context.Context, userID string, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, "user:"+userID)
	if err != nil {
		return fmt.Errorf("lock user %s: %w", userID, err)
	}
	defer unlock()

	return fn()
}

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: userId is required", model.ErrValidation)
	}
	return nil
}

func requireProduct(productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: productId is required", model.ErrValidation)
	}
	return nil
}

// GetProducts возвращает товары каталога.
func (s *Service) GetProducts(ctx context.Context, category string) ([]model.Product, error) {
	products, err := s.catalog.ListProducts(ctx, category)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// GetProduct возвращает товар каталога.
func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.catalog.GetProduct(ctx, id)
}

// ProcessPayment передаёт платёж в платёжный шлюз.
func (s *Service) ProcessPayment(ctx context.Context, req payment.Request) (*payment.Result, error) {
	return s.payments.Process(ctx, req)
}

// PaymentStatus возвращает статус платежа.
func (s *Service) PaymentStatus(ctx context.Context, paymentID string) (*payment.Result, error) {
	return s.payments.Status(ctx, paymentID)
}
