package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// MemoryRepository хранит документы в памяти процесса.
// Используется, когда адрес БД не задан, и в тестах.
type MemoryRepository struct {
	mu sync.RWMutex

	products       map[string]model.Product
	carts          map[string]*model.Cart
	orders         []model.Order
	profiles       map[string]*model.UserProfile
	addresses      []model.Address
	paymentMethods []model.PaymentMethod
	reviews        []model.Review
}

// NewMemoryRepository создаёт хранилище с заданным каталогом товаров.
func NewMemoryRepository(products []model.Product) *MemoryRepository {
	r := &MemoryRepository{
		products: make(map[string]model.Product, len(products)),
		carts:    make(map[string]*model.Cart),
		profiles: make(map[string]*model.UserProfile),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

// DefaultProducts возвращает демонстрационный каталог, совпадающий с миграцией 00002_seed_products.sql.
func DefaultProducts() []model.Product {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Product{
		{
			ID:          "8d0f6f3e-5b1a-4c2e-9a51-0c3f1d8e7a01",
			Name:        "Wireless Headphones",
			Description: "Premium noise-cancelling wireless headphones with 30-hour battery life",
			Price:       decimal.RequireFromString("199.99"),
			Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&h=500&fit=crop",
			Category:    "Electronics",
			Stock:       50,
			CreatedAt:   created,
		},
		{
			ID:          "8d0f6f3e-5b1a-4c2e-9a51-0c3f1d8e7a02",
			Name:        "Smart Watch",
			Description: "Advanced fitness tracking and health monitoring smartwatch",
			Price:       decimal.RequireFromString("299.99"),
			Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500&h=500&fit=crop",
			Category:    "Electronics",
			Stock:       35,
			CreatedAt:   created,
		},
		{
			ID:          "8d0f6f3e-5b1a-4c2e-9a51-0c3f1d8e7a03",
			Name:        "USB-C Cable",
			Description: "Fast charging USB-C cable with 10-year durability guarantee",
			Price:       decimal.RequireFromString("19.99"),
			Image:       "https://images.unsplash.com/photo-1625948515291-69613efd103f?w=500&h=500&fit=crop",
			Category:    "Accessories",
			Stock:       200,
			CreatedAt:   created,
		},
		{
			ID:          "8d0f6f3e-5b1a-4c2e-9a51-0c3f1d8e7a04",
			Name:        "Portable Speaker",
			Description: "Waterproof Bluetooth speaker with 360-degree sound",
			Price:       decimal.RequireFromString("79.99"),
			Image:       "https://images.unsplash.com/photo-1589003077984-894e133da26d?w=500&h=500&fit=crop",
			Category:    "Electronics",
			Stock:       45,
			CreatedAt:   created,
		},
	}
}

// Close ничего не делает и существует для совместимости с PostgresRepository.
func (r *MemoryRepository) Close() error {
	return nil
}

func (r *MemoryRepository) GetProduct(_ context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, model.ErrNotFound)
	}
	return &p, nil
}

func (r *MemoryRepository) ListProducts(_ context.Context, category string) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []model.Product
	for _, p := range r.products {
		if category == "" || p.Category == category {
			res = append(res, p)
		}
	}
	slices.SortFunc(res, func(a, b model.Product) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return res, nil
}

func (r *MemoryRepository) GetCart(_ context.Context, userID string) (*model.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart of %s: %w", userID, model.ErrNotFound)
	}
	return c.Clone(), nil
}

func (r *MemoryRepository) EnsureCart(_ context.Context, userID string, now time.Time) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ensureCart(userID, now).Clone(), nil
}

func (r *MemoryRepository) ensureCart(userID string, now time.Time) *model.Cart {
	c, ok := r.carts[userID]
	if !ok {
		c = model.NewCart(userID, now)
		r.carts[userID] = c
	}
	return c
}

func (r *MemoryRepository) UpdateCart(_ context.Context, userID string, now time.Time, fn func(*model.Cart) error) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.ensureCart(userID, now).Clone()
	if err := fn(c); err != nil {
		return nil, err
	}
	r.carts[userID] = c
	return c.Clone(), nil
}

func (r *MemoryRepository) CreateOrder(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.UserID == o.UserID && existing.CheckoutKey == o.CheckoutKey {
			return fmt.Errorf("%w: %s", ErrDuplicateCheckout, o.CheckoutKey)
		}
	}

	cp := *o
	cp.Items = slices.Clone(o.Items)
	r.orders = append(r.orders, cp)
	return nil
}

func (r *MemoryRepository) GetOrder(_ context.Context, userID, orderID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID == orderID && o.UserID == userID {
			o.Items = slices.Clone(o.Items)
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", orderID, model.ErrNotFound)
}

func (r *MemoryRepository) GetOrderByCheckoutKey(_ context.Context, userID, key string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.UserID == userID && o.CheckoutKey == key {
			o.Items = slices.Clone(o.Items)
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order with key %s: %w", key, model.ErrNotFound)
}

func (r *MemoryRepository) GetOrdersByUser(_ context.Context, userID string) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			o.Items = slices.Clone(o.Items)
			res = append(res, o)
		}
	}
	slices.SortStableFunc(res, func(a, b model.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res, nil
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, userID string, now time.Time, fn func(*model.UserProfile) error) (*model.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var p model.UserProfile
	if existing, ok := r.profiles[userID]; ok {
		p = *existing
	} else {
		p = *model.NewUserProfile(userID, now)
	}
	if p.LastLogin != nil {
		t := *p.LastLogin
		p.LastLogin = &t
	}

	if err := fn(&p); err != nil {
		return nil, err
	}

	stored := p
	r.profiles[userID] = &stored
	return &p, nil
}

func (r *MemoryRepository) SetDefault(_ context.Context, c model.Collection, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch c {
	case model.CollectionAddresses:
		return setDefault(r.addresses, userID, id,
			func(a *model.Address) (string, string) { return a.UserID, a.ID },
			func(a *model.Address, v bool) { a.IsDefault = v },
		)
	case model.CollectionPaymentMethods:
		return setDefault(r.paymentMethods, userID, id,
			func(m *model.PaymentMethod) (string, string) { return m.UserID, m.ID },
			func(m *model.PaymentMethod, v bool) { m.IsDefault = v },
		)
	}
	return fmt.Errorf("unknown collection %q", c)
}

func setDefault[T any](items []T, userID, id string, key func(*T) (string, string), set func(*T, bool)) error {
	target := -1
	for i := range items {
		owner, itemID := key(&items[i])
		if owner == userID && itemID == id {
			target = i
			break
		}
	}
	if target < 0 {
		return fmt.Errorf("%s of user %s: %w", id, userID, model.ErrNotFound)
	}

	for i := range items {
		if owner, _ := key(&items[i]); owner == userID {
			set(&items[i], i == target)
		}
	}
	return nil
}

func (r *MemoryRepository) GetAddress(_ context.Context, id string) (*model.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.addresses {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("address %s: %w", id, model.ErrNotFound)
}

func (r *MemoryRepository) ListAddresses(_ context.Context, userID string) ([]model.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []model.Address{}
	for i := len(r.addresses) - 1; i >= 0; i-- {
		if r.addresses[i].UserID == userID {
			res = append(res, r.addresses[i])
		}
	}
	return res, nil
}

func (r *MemoryRepository) CreateAddress(_ context.Context, a *model.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *a
	cp.IsDefault = false
	r.addresses = append(r.addresses, cp)
	return nil
}

func (r *MemoryRepository) UpdateAddress(_ context.Context, a *model.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.addresses {
		if r.addresses[i].ID == a.ID {
			cp := *a
			cp.IsDefault = r.addresses[i].IsDefault && a.IsDefault
			r.addresses[i] = cp
			return nil
		}
	}
	return fmt.Errorf("address %s: %w", a.ID, model.ErrNotFound)
}

func (r *MemoryRepository) DeleteAddress(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.addresses {
		if r.addresses[i].ID == id {
			r.addresses = slices.Delete(r.addresses, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("address %s: %w", id, model.ErrNotFound)
}

func (r *MemoryRepository) GetPaymentMethod(_ context.Context, id string) (*model.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.paymentMethods {
		if m.ID == id {
			cp := m.Clone()
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("payment method %s: %w", id, model.ErrNotFound)
}

func (r *MemoryRepository) ListPaymentMethods(_ context.Context, userID string) ([]model.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []model.PaymentMethod{}
	for i := len(r.paymentMethods) - 1; i >= 0; i-- {
		if r.paymentMethods[i].UserID == userID {
			res = append(res, r.paymentMethods[i].Clone())
		}
	}
	return res, nil
}

func (r *MemoryRepository) CreatePaymentMethod(_ context.Context, m *model.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := m.Clone()
	cp.IsDefault = false
	r.paymentMethods = append(r.paymentMethods, cp)
	return nil
}

func (r *MemoryRepository) UpdatePaymentMethod(_ context.Context, m *model.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.paymentMethods {
		if r.paymentMethods[i].ID == m.ID {
			cp := m.Clone()
			cp.IsDefault = r.paymentMethods[i].IsDefault && m.IsDefault
			r.paymentMethods[i] = cp
			return nil
		}
	}
	return fmt.Errorf("payment method %s: %w", m.ID, model.ErrNotFound)
}

func (r *MemoryRepository) DeletePaymentMethod(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.paymentMethods {
		if r.paymentMethods[i].ID == id {
			r.paymentMethods = slices.Delete(r.paymentMethods, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("payment method %s: %w", id, model.ErrNotFound)
}

func (r *MemoryRepository) CreateReview(_ context.Context, rv *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reviews = append(r.reviews, *rv)
	return nil
}

func (r *MemoryRepository) ListReviewsByProduct(_ context.Context, productID string) ([]model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []model.Review{}
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].ProductID == productID {
			res = append(res, r.reviews[i])
		}
	}
	return res, nil
}

func (r *MemoryRepository) IncrementReviewHelpful(_ context.Context, id string) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.reviews {
		if r.reviews[i].ID == id {
			r.reviews[i].Helpful++
			rv := r.reviews[i]
			return &rv, nil
		}
	}
	return nil, fmt.Errorf("review %s: %w", id, model.ErrNotFound)
}
