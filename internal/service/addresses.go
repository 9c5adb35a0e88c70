package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mmeshcher/storefront-system/internal/model"
)

const defaultAddressType = "home"

// GetAddresses возвращает адреса пользователя.
func (s *Service) GetAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repo.ListAddresses(ctx, userID)
}

// GetAddress возвращает адрес по идентификатору.
func (s *Service) GetAddress(ctx context.Context, id string) (*model.Address, error) {
	return s.repo.GetAddress(ctx, id)
}

// CreateAddress сохраняет новый адрес. Признак по умолчанию выставляется через SetDefault.
func (s *Service) CreateAddress(ctx context.Context, a model.Address) (*model.Address, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if a.AddressType == "" {
		a.AddressType = defaultAddressType
	}

	wantDefault := a.IsDefault
	a.ID = uuid.NewString()
	a.IsDefault = false
	a.CreatedAt = s.now()

	if err := s.repo.CreateAddress(ctx, &a); err != nil {
		return nil, err
	}

	if wantDefault {
		return s.SetDefaultAddress(ctx, a.UserID, a.ID)
	}
	return &a, nil
}

// UpdateAddress применяет частичное обновление адреса.
func (s *Service) UpdateAddress(ctx context.Context, id string, patch model.AddressPatch) (*model.Address, error) {
	a, err := s.repo.GetAddress(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Apply(patch)
	if patch.IsDefault != nil && !*patch.IsDefault {
		a.IsDefault = false
	}

	if err := s.repo.UpdateAddress(ctx, a); err != nil {
		return nil, err
	}

	if patch.IsDefault != nil && *patch.IsDefault {
		return s.SetDefaultAddress(ctx, a.UserID, a.ID)
	}
	return s.repo.GetAddress(ctx, id)
}

// DeleteAddress удаляет адрес.
func (s *Service) DeleteAddress(ctx context.Context, id string) error {
	return s.repo.DeleteAddress(ctx, id)
}
