package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// UnknownPaymentLabel используется, когда способ оплаты не указан или не найден.
const UnknownPaymentLabel = "unknown"

// Order описывает оформленный заказ. Позиции, адрес и сумма после создания не изменяются.
type Order struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	Items              []CartLine      `json:"items"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
	CustomerInfo       CustomerInfo    `json:"customerInfo"`
	PaymentMethodLabel string          `json:"paymentMethod"`
	Status             OrderStatus     `json:"status"`
	CheckoutKey        string          `json:"-"`
	CartVersion        int64           `json:"-"`
	CreatedAt          time.Time       `json:"createdAt"`
}
