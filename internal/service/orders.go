package service

import (
	"context"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// GetOrders возвращает заказы пользователя, начиная с последнего.
func (s *Service) GetOrders(ctx context.Context, userID string) ([]model.Order, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	orders, err := s.repo.GetOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// GetOrder возвращает заказ пользователя.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, userID, orderID)
}
