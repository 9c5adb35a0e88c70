package service

import (
	"context"
	"fmt"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// GetCart возвращает корзину пользователя, создавая пустую при первом обращении.
func (s *Service) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repo.EnsureCart(ctx, userID, s.now())
}

// AddToCart добавляет товар каталога в корзину по его текущей цене.
func (s *Service) AddToCart(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := requireProduct(productID); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrValidation)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutateCart(ctx, userID, func(c *model.Cart) error {
		return c.AddItem(*product, quantity, s.now())
	})
}

// RemoveFromCart удаляет позицию из корзины.
func (s *Service) RemoveFromCart(ctx context.Context, userID, productID string) (*model.Cart, error) {
	if err := requireProduct(productID); err != nil {
		return nil, err
	}

	return s.mutateCart(ctx, userID, func(c *model.Cart) error {
		c.RemoveItem(productID, s.now())
		return nil
	})
}

// UpdateCartItem задаёт количество позиции. Количество <= 0 удаляет позицию.
func (s *Service) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if err := requireProduct(productID); err != nil {
		return nil, err
	}

	return s.mutateCart(ctx, userID, func(c *model.Cart) error {
		c.UpdateQuantity(productID, quantity, s.now())
		return nil
	})
}

// SaveForLater переносит позицию в отложенные.
func (s *Service) SaveForLater(ctx context.Context, userID, productID string) (*model.Cart, error) {
	if err := requireProduct(productID); err != nil {
		return nil, err
	}

	return s.mutateCart(ctx, userID, func(c *model.Cart) error {
		return c.MoveToSaved(productID, s.now())
	})
}

// MoveToCart возвращает отложенную позицию в корзину.
func (s *Service) MoveToCart(ctx context.Context, userID, productID string) (*model.Cart, error) {
	if err := requireProduct(productID); err != nil {
		return nil, err
	}

	return s.mutateCart(ctx, userID, func(c *model.Cart) error {
		return c.MoveToCart(productID, s.now())
	})
}

// RemoveFromSaved удаляет позицию из отложенных.
func (s *Service) RemoveFromSaved(ctx context.Context, userID, productID string) (*model.Cart, error) {
	if err := requireProduct(productID); err != nil {
		return nil, err
	}

	return s.mutateCart(ctx, userID, func(c *model.Cart) error {
		c.RemoveFromSaved(productID, s.now())
		return nil
	})
}

// ClearCart очищает корзину, сохраняя отложенные позиции.
func (s *Service) ClearCart(ctx context.Context, userID string) (*model.Cart, error) {
	return s.mutateCart(ctx, userID, func(c *model.Cart) error {
		c.Clear(s.now())
		return nil
	})
}

// mutateCart применяет fn к корзине под блокировкой пользователя.
func (s *Service) mutateCart(ctx context.Context, userID string, fn func(*model.Cart) error) (*model.Cart, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var cart *model.Cart
	err := s.withUserLock(ctx, userID, func() error {
		var err error
		cart, err = s.repo.UpdateCart(ctx, userID, s.now(), fn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}
