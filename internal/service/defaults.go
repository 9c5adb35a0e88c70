package service

import (
	"context"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// setDefault делает запись единственной записью по умолчанию в коллекции пользователя.
func (s *Service) setDefault(ctx context.Context, c model.Collection, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}

	return s.withUserLock(ctx, userID, func() error {
		return s.repo.SetDefault(ctx, c, userID, id)
	})
}

// SetDefaultAddress делает адрес адресом по умолчанию.
func (s *Service) SetDefaultAddress(ctx context.Context, userID, id string) (*model.Address, error) {
	if err := s.setDefault(ctx, model.CollectionAddresses, userID, id); err != nil {
		return nil, err
	}
	return s.repo.GetAddress(ctx, id)
}

// SetDefaultPaymentMethod делает способ оплаты способом по умолчанию.
func (s *Service) SetDefaultPaymentMethod(ctx context.Context, userID, id string) (*model.PaymentMethod, error) {
	if err := s.setDefault(ctx, model.CollectionPaymentMethods, userID, id); err != nil {
		return nil, err
	}
	return s.repo.GetPaymentMethod(ctx, id)
}
