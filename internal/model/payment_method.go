package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaymentMethodType определяет вариант сохранённого способа оплаты.
type PaymentMethodType string

const (
	MethodCreditCard    PaymentMethodType = "credit_card"
	MethodDebitCard     PaymentMethodType = "debit_card"
	MethodDigitalWallet PaymentMethodType = "digital_wallet"
	MethodBankTransfer  PaymentMethodType = "bank_transfer"
)

// Valid сообщает, что тип способа оплаты поддерживается.
func (t PaymentMethodType) Valid() bool {
	switch t {
	case MethodCreditCard, MethodDebitCard, MethodDigitalWallet, MethodBankTransfer:
		return true
	}
	return false
}

// PaymentDetails реализуется только вариантами CardDetails, WalletDetails и BankDetails.
type PaymentDetails interface {
	paymentDetails()
}

// CardDetails содержит данные банковской карты. Номер хранится только последними четырьмя цифрами.
type CardDetails struct {
	CardholderName string `json:"cardholderName,omitempty"`
	CardNumber     string `json:"cardNumber,omitempty"`
	ExpiryMonth    string `json:"expiryMonth,omitempty"`
	ExpiryYear     string `json:"expiryYear,omitempty"`
	CardBrand      string `json:"cardBrand,omitempty"`
}

// WalletDetails содержит данные электронного кошелька.
type WalletDetails struct {
	WalletProvider string `json:"walletProvider,omitempty"`
	WalletEmail    string `json:"walletEmail,omitempty"`
}

// BankDetails содержит данные банковского счёта. Номер счёта хранится только последними четырьмя цифрами.
type BankDetails struct {
	BankName          string `json:"bankName,omitempty"`
	AccountHolderName string `json:"accountHolderName,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty"`
	RoutingNumber     string `json:"routingNumber,omitempty"`
	AccountType       string `json:"accountType,omitempty"`
}

func (*CardDetails) paymentDetails()   {}
func (*WalletDetails) paymentDetails() {}
func (*BankDetails) paymentDetails()   {}

// PaymentMethod описывает сохранённый способ оплаты пользователя.
type PaymentMethod struct {
	ID         string
	UserID     string
	MethodType PaymentMethodType
	IsDefault  bool
	Details    PaymentDetails
	CreatedAt  time.Time
}

// Label возвращает описание способа оплаты, которое сохраняется в заказе.
func (m PaymentMethod) Label() string {
	return string(m.MethodType)
}

// Validate проверяет обязательные поля варианта.
func (m PaymentMethod) Validate() error {
	if m.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}

	switch d := m.Details.(type) {
	case *CardDetails:
		if m.MethodType != MethodCreditCard && m.MethodType != MethodDebitCard {
			return fmt.Errorf("%w: card details for %q", ErrValidation, m.MethodType)
		}
		if d.CardholderName == "" || d.CardNumber == "" || d.ExpiryMonth == "" || d.ExpiryYear == "" {
			return fmt.Errorf("%w: cardholderName, cardNumber, expiryMonth and expiryYear are required", ErrValidation)
		}
	case *WalletDetails:
		if m.MethodType != MethodDigitalWallet {
			return fmt.Errorf("%w: wallet details for %q", ErrValidation, m.MethodType)
		}
		if d.WalletProvider == "" {
			return fmt.Errorf("%w: walletProvider is required", ErrValidation)
		}
	case *BankDetails:
		if m.MethodType != MethodBankTransfer {
			return fmt.Errorf("%w: bank details for %q", ErrValidation, m.MethodType)
		}
		if d.BankName == "" || d.AccountHolderName == "" || d.AccountNumber == "" {
			return fmt.Errorf("%w: bankName, accountHolderName and accountNumber are required", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unsupported methodType %q", ErrValidation, m.MethodType)
	}

	return nil
}

type paymentMethodJSON struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	MethodType PaymentMethodType `json:"methodType"`
	IsDefault  bool              `json:"isDefault"`
	CreatedAt  time.Time         `json:"createdAt"`
	*CardDetails
	*WalletDetails
	*BankDetails
}

// MarshalJSON выводит поля варианта на верхнем уровне рядом с methodType.
func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	out := paymentMethodJSON{
		ID:         m.ID,
		UserID:     m.UserID,
		MethodType: m.MethodType,
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt,
	}

	switch d := m.Details.(type) {
	case *CardDetails:
		out.CardDetails = d
	case *WalletDetails:
		out.WalletDetails = d
	case *BankDetails:
		out.BankDetails = d
	}

	return json.Marshal(out)
}

// UnmarshalJSON выбирает вариант по methodType и игнорирует поля других вариантов.
func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var in paymentMethodJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	details, err := detailsFor(in)
	if err != nil {
		return err
	}

	*m = PaymentMethod{
		ID:         in.ID,
		UserID:     in.UserID,
		MethodType: in.MethodType,
		IsDefault:  in.IsDefault,
		Details:    details,
		CreatedAt:  in.CreatedAt,
	}
	return nil
}

func detailsFor(in paymentMethodJSON) (PaymentDetails, error) {
	switch in.MethodType {
	case MethodCreditCard, MethodDebitCard:
		if in.CardDetails == nil {
			return &CardDetails{}, nil
		}
		return in.CardDetails, nil
	case MethodDigitalWallet:
		if in.WalletDetails == nil {
			return &WalletDetails{}, nil
		}
		return in.WalletDetails, nil
	case MethodBankTransfer:
		if in.BankDetails == nil {
			return &BankDetails{}, nil
		}
		return in.BankDetails, nil
	default:
		return nil, fmt.Errorf("%w: unsupported methodType %q", ErrValidation, in.MethodType)
	}
}

// PaymentMethodPatch описывает частичное обновление способа оплаты. Пустые поля не изменяются.
type PaymentMethodPatch struct {
	MethodType PaymentMethodType `json:"methodType,omitempty"`
	IsDefault  *bool             `json:"isDefault,omitempty"`
	CardDetails
	WalletDetails
	BankDetails
}

// Apply применяет изменения. При смене methodType вариант заменяется целиком.
func (m *PaymentMethod) Apply(p PaymentMethodPatch) {
	if p.MethodType != "" && p.MethodType != m.MethodType {
		m.MethodType = p.MethodType
		switch p.MethodType {
		case MethodCreditCard, MethodDebitCard:
			if _, ok := m.Details.(*CardDetails); !ok {
				m.Details = &CardDetails{}
			}
		case MethodDigitalWallet:
			m.Details = &WalletDetails{}
		case MethodBankTransfer:
			m.Details = &BankDetails{}
		default:
			m.Details = nil
		}
	}

	switch d := m.Details.(type) {
	case *CardDetails:
		setIfNotEmpty(&d.CardholderName, p.CardholderName)
		setIfNotEmpty(&d.CardNumber, p.CardNumber)
		setIfNotEmpty(&d.ExpiryMonth, p.ExpiryMonth)
		setIfNotEmpty(&d.ExpiryYear, p.ExpiryYear)
		setIfNotEmpty(&d.CardBrand, p.CardBrand)
	case *WalletDetails:
		setIfNotEmpty(&d.WalletProvider, p.WalletProvider)
		setIfNotEmpty(&d.WalletEmail, p.WalletEmail)
	case *BankDetails:
		setIfNotEmpty(&d.BankName, p.BankName)
		setIfNotEmpty(&d.AccountHolderName, p.AccountHolderName)
		setIfNotEmpty(&d.AccountNumber, p.AccountNumber)
		setIfNotEmpty(&d.RoutingNumber, p.RoutingNumber)
		setIfNotEmpty(&d.AccountType, p.AccountType)
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Clone возвращает копию способа оплаты с независимыми данными варианта.
func (m PaymentMethod) Clone() PaymentMethod {
	switch d := m.Details.(type) {
	case *CardDetails:
		cp := *d
		m.Details = &cp
	case *WalletDetails:
		cp := *d
		m.Details = &cp
	case *BankDetails:
		cp := *d
		m.Details = &cp
	}
	return m
}
