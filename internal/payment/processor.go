// Package payment содержит заглушку платёжного шлюза.
// Реальная авторизация и списание средств не выполняются.
package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/validation"
)

// Статусы платежа.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// Request описывает запрос на проведение платежа.
type Request struct {
	Amount          decimal.Decimal         `json:"amount"`
	PaymentMethodID string                  `json:"paymentMethodId,omitempty"`
	MethodType      model.PaymentMethodType `json:"methodType"`
	CustomerInfo    *model.CustomerInfo     `json:"customerInfo"`
	Last4           string                  `json:"last4,omitempty"`
	WalletProvider  string                  `json:"walletProvider,omitempty"`
}

// Result описывает результат проведения платежа.
type Result struct {
	Success    bool                    `json:"success"`
	PaymentID  string                  `json:"paymentId"`
	Amount     decimal.Decimal         `json:"amount"`
	Status     string                  `json:"status"`
	Timestamp  time.Time               `json:"timestamp"`
	MethodType model.PaymentMethodType `json:"methodType,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Last4      string                  `json:"last4,omitempty"`
	Provider   string                  `json:"provider,omitempty"`
}

// Processor имитирует платёжный шлюз и запоминает проведённые платежи.
type Processor struct {
	mu       sync.RWMutex
	payments map[string]Result
	now      func() time.Time
}

// NewProcessor создаёт заглушку платёжного шлюза.
func NewProcessor() *Processor {
	return &Processor{
		payments: make(map[string]Result),
		now:      time.Now,
	}
}

// Process всегда завершается успешно. Банковский перевод остаётся в статусе pending.
func (p *Processor) Process(_ context.Context, req Request) (*Result, error) {
	if !req.Amount.IsPositive() || req.MethodType == "" || req.CustomerInfo == nil {
		return nil, fmt.Errorf("%w: missing payment information", model.ErrValidation)
	}

	res := Result{
		Success:    true,
		PaymentID:  "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		Amount:     req.Amount,
		Status:     StatusCompleted,
		Timestamp:  p.now(),
		MethodType: req.MethodType,
	}

	switch req.MethodType {
	case model.MethodCreditCard:
		res.Message = "Credit card payment processed successfully"
		res.Last4 = validation.Last4(req.Last4)
	case model.MethodDebitCard:
		res.Message = "Debit card payment processed successfully"
		res.Last4 = validation.Last4(req.Last4)
	case model.MethodDigitalWallet:
		res.Message = req.WalletProvider + " payment processed successfully"
		res.Provider = req.WalletProvider
	case model.MethodBankTransfer:
		res.Message = "Bank transfer initiated successfully"
		res.Status = StatusPending
	default:
		res.Message = "Payment processed successfully"
	}

	p.mu.Lock()
	p.payments[res.PaymentID] = res
	p.mu.Unlock()

	return &res, nil
}

// Status возвращает статус платежа. Неизвестный платёж считается завершённым.
func (p *Processor) Status(_ context.Context, paymentID string) (*Result, error) {
	p.mu.RLock()
	res, ok := p.payments[paymentID]
	p.mu.RUnlock()

	if !ok {
		res = Result{
			PaymentID: paymentID,
			Amount:    decimal.Zero,
			Status:    StatusCompleted,
			Timestamp: p.now(),
		}
	}
	return &res, nil
}
