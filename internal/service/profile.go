package service

import (
	"context"

	"github.com/mmeshcher/storefront-system/internal/model"
)

// GetProfile возвращает профиль пользователя, пересчитывая статистику по истории заказов.
// Профиль создаётся при первом обращении.
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var profile *model.UserProfile
	err := s.withUserLock(ctx, userID, func() error {
		var err error
		profile, err = s.reconcileProfile(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// reconcileProfile перезаписывает кеш статистики профиля. Вызывается под блокировкой пользователя.
func (s *Service) reconcileProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	orders, err := s.repo.GetOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.UpdateProfile(ctx, userID, s.now(), func(p *model.UserProfile) error {
		p.Reconcile(orders)
		return nil
	})
}

// UpdateProfile применяет частичное обновление личных данных и настроек.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch model.ProfilePatch) (*model.UserProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	now := s.now()
	return s.repo.UpdateProfile(ctx, userID, now, func(p *model.UserProfile) error {
		p.Apply(patch)
		p.UpdatedAt = now
		return nil
	})
}

// TouchLastLogin фиксирует время последнего входа.
func (s *Service) TouchLastLogin(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	now := s.now()
	return s.repo.UpdateProfile(ctx, userID, now, func(p *model.UserProfile) error {
		p.LastLogin = &now
		return nil
	})
}
