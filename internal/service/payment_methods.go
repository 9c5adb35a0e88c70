package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

// GetPaymentMethods возвращает способы оплаты пользователя.
func (s *Service) GetPaymentMethods(ctx context.Context, userID string) ([]model.PaymentMethod, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.repo.ListPaymentMethods(ctx, userID)
}

// GetPaymentMethod возвращает способ оплаты по идентификатору.
func (s *Service) GetPaymentMethod(ctx context.Context, id string) (*model.PaymentMethod, error) {
	return s.repo.GetPaymentMethod(ctx, id)
}

// CreatePaymentMethod сохраняет новый способ оплаты.
// Номера карт и счетов сохраняются только последними четырьмя цифрами.
func (s *Service) CreatePaymentMethod(ctx context.Context, m model.PaymentMethod) (*model.PaymentMethod, error) {
	m = m.Clone()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := maskNumbers(&m, true); err != nil {
		return nil, err
	}

	wantDefault := m.IsDefault
	m.ID = uuid.NewString()
	m.IsDefault = false
	m.CreatedAt = s.now()

	if err := s.repo.CreatePaymentMethod(ctx, &m); err != nil {
		return nil, err
	}

	if wantDefault {
		return s.SetDefaultPaymentMethod(ctx, m.UserID, m.ID)
	}
	return &m, nil
}

// UpdatePaymentMethod применяет частичное обновление способа оплаты.
func (s *Service) UpdatePaymentMethod(ctx context.Context, id string, patch model.PaymentMethodPatch) (*model.PaymentMethod, error) {
	m, err := s.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		return nil, err
	}

	m.Apply(patch)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	// номер проверяется, только если пришёл новый; сохранённый уже замаскирован
	newNumber := patch.CardNumber != "" || patch.AccountNumber != ""
	if err := maskNumbers(m, newNumber); err != nil {
		return nil, err
	}
	if patch.IsDefault != nil && !*patch.IsDefault {
		m.IsDefault = false
	}

	if err := s.repo.UpdatePaymentMethod(ctx, m); err != nil {
		return nil, err
	}

	if patch.IsDefault != nil && *patch.IsDefault {
		return s.SetDefaultPaymentMethod(ctx, m.UserID, m.ID)
	}
	return s.repo.GetPaymentMethod(ctx, id)
}

// DeletePaymentMethod удаляет способ оплаты.
func (s *Service) DeletePaymentMethod(ctx context.Context, id string) error {
	return s.repo.DeletePaymentMethod(ctx, id)
}

func maskNumbers(m *model.PaymentMethod, check bool) error {
	switch d := m.Details.(type) {
	case *model.CardDetails:
		if check && !validation.IsValidCardNumber(d.CardNumber) {
			return fmt.Errorf("%w: invalid card number", model.ErrValidation)
		}
		d.CardNumber = validation.Last4(d.CardNumber)
	case *model.BankDetails:
		d.AccountNumber = validation.Last4(d.AccountNumber)
	}
	return nil
}
