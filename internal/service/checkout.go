package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/repository"
)

// CheckoutRequest описывает запрос на оформление заказа.
type CheckoutRequest struct {
	UserID          string
	AddressID       string
	PaymentMethodID string
	MethodType      model.PaymentMethodType
	// IdempotencyKey задаётся клиентом. Если пуст, ключ выводится из версии корзины.
	IdempotencyKey string
}

// Checkout превращает корзину пользователя в заказ.
//
// Повторный вызов с тем же ключом возвращает уже созданный заказ и не создаёт новый.
// Ошибки обновления профиля и очистки корзины после сохранения заказа
// только логируются: заказ к этому моменту уже существует.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	var order *model.Order
	err := s.withUserLock(ctx, req.UserID, func() error {
		var err error
		order, err = s.checkout(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	key := req.IdempotencyKey
	if key != "" {
		existing, err := s.findCheckout(ctx, req.UserID, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.replay(ctx, existing), nil
		}
	}

	cart, err := s.repo.GetCart(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrEmptyCart
		}
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	if key == "" {
		key = fmt.Sprintf("cart:%s:%d", req.UserID, cart.Version)
		existing, err := s.findCheckout(ctx, req.UserID, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.replay(ctx, existing), nil
		}
	}

	now := s.now()
	order := &model.Order{
		ID:                 uuid.NewString(),
		UserID:             req.UserID,
		Items:              cart.CloneItems(),
		TotalPrice:         cart.TotalPrice,
		CustomerInfo:       s.resolveCustomerInfo(ctx, req.UserID, req.AddressID),
		PaymentMethodLabel: s.resolvePaymentLabel(ctx, req),
		Status:             model.OrderStatusCompleted,
		CheckoutKey:        key,
		CartVersion:        cart.Version,
		CreatedAt:          now,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		if !errors.Is(err, repository.ErrDuplicateCheckout) {
			return nil, err
		}
		existing, findErr := s.repo.GetOrderByCheckoutKey(ctx, req.UserID, key)
		if findErr != nil {
			return nil, findErr
		}
		return s.replay(ctx, existing), nil
	}

	log := s.logger.With(zap.String("user_id", req.UserID), zap.String("order_id", order.ID))

	_, err = s.repo.UpdateProfile(ctx, req.UserID, now, func(p *model.UserProfile) error {
		p.TotalOrders++
		p.TotalSpent = p.TotalSpent.Add(order.TotalPrice)
		p.LastLogin = &now
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		log.Warn("update profile after checkout", zap.Error(err))
	}

	_, err = s.repo.UpdateCart(ctx, req.UserID, now, func(c *model.Cart) error {
		c.Reset(key, now)
		return nil
	})
	if err != nil {
		log.Warn("reset cart after checkout", zap.Error(err))
	}

	log.Info("order created", zap.String("total", order.TotalPrice.String()))
	return order, nil
}

// findCheckout возвращает заказ с указанным ключом или nil, если такого нет.
func (s *Service) findCheckout(ctx context.Context, userID, key string) (*model.Order, error) {
	order, err := s.repo.GetOrderByCheckoutKey(ctx, userID, key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// replay завершает побочные эффекты ранее сохранённого заказа, не повторяя их.
// Профиль пересчитывается по истории, корзина очищается только если она
// всё ещё в том состоянии, из которого был создан заказ.
func (s *Service) replay(ctx context.Context, order *model.Order) *model.Order {
	log := s.logger.With(zap.String("user_id", order.UserID), zap.String("order_id", order.ID))
	log.Info("checkout replayed")

	if _, err := s.reconcileProfile(ctx, order.UserID); err != nil {
		log.Warn("reconcile profile on replay", zap.Error(err))
	}

	now := s.now()
	_, err := s.repo.UpdateCart(ctx, order.UserID, now, func(c *model.Cart) error {
		if c.Version == order.CartVersion && c.LastCheckoutKey != order.CheckoutKey {
			c.Reset(order.CheckoutKey, now)
		}
		return nil
	})
	if err != nil {
		log.Warn("reset cart on replay", zap.Error(err))
	}

	return order
}

func (s *Service) resolveCustomerInfo(ctx context.Context, userID, addressID string) model.CustomerInfo {
	if addressID == "" {
		return model.CustomerInfo{}
	}

	addr, err := s.repo.GetAddress(ctx, addressID)
	if err != nil {
		s.logger.Warn("resolve checkout address",
			zap.String("user_id", userID), zap.String("address_id", addressID), zap.Error(err))
		return model.CustomerInfo{}
	}
	if addr.UserID != userID {
		s.logger.Warn("checkout address belongs to another user",
			zap.String("user_id", userID), zap.String("address_id", addressID))
		return model.CustomerInfo{}
	}

	return addr.Snapshot()
}

func (s *Service) resolvePaymentLabel(ctx context.Context, req CheckoutRequest) string {
	if req.PaymentMethodID != "" {
		m, err := s.repo.GetPaymentMethod(ctx, req.PaymentMethodID)
		switch {
		case err != nil:
			s.logger.Debug("resolve checkout payment method",
				zap.String("user_id", req.UserID), zap.String("payment_method_id", req.PaymentMethodID), zap.Error(err))
		case m.UserID == req.UserID:
			return m.Label()
		}
	}

	if req.MethodType.Valid() {
		return string(req.MethodType)
	}
	return model.UnknownPaymentLabel
}
