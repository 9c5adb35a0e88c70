// Package model содержит доменные сущности витрины магазина.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Collection определяет пользовательскую коллекцию, в которой действует правило единственной записи по умолчанию.
type Collection string

const (
	CollectionAddresses      Collection = "addresses"
	CollectionPaymentMethods Collection = "payment_methods"
)

// Address описывает адрес доставки пользователя.
type Address struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	FullName      string    `json:"fullName"`
	PhoneNumber   string    `json:"phoneNumber"`
	StreetAddress string    `json:"streetAddress"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	ZipCode       string    `json:"zipCode"`
	Country       string    `json:"country"`
	AddressType   string    `json:"addressType"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CustomerInfo является снимком адреса на момент оформления заказа.
type CustomerInfo struct {
	FullName      string `json:"fullName,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	ZipCode       string `json:"zipCode,omitempty"`
	Country       string `json:"country,omitempty"`
}

// Snapshot копирует поля адреса в CustomerInfo.
func (a Address) Snapshot() CustomerInfo {
	return CustomerInfo{
		FullName:      a.FullName,
		PhoneNumber:   a.PhoneNumber,
		StreetAddress: a.StreetAddress,
		City:          a.City,
		State:         a.State,
		ZipCode:       a.ZipCode,
		Country:       a.Country,
	}
}

// Preferences содержит пользовательские настройки рассылок.
type Preferences struct {
	Newsletter    bool `json:"newsletter"`
	Notifications bool `json:"notifications"`
}

// UserProfile описывает профиль пользователя.
// TotalOrders и TotalSpent являются кешем, пересчитываемым по истории заказов.
type UserProfile struct {
	UserID       string          `json:"userId"`
	FirstName    string          `json:"firstName,omitempty"`
	LastName     string          `json:"lastName,omitempty"`
	Email        string          `json:"email,omitempty"`
	PhoneNumber  string          `json:"phoneNumber,omitempty"`
	ProfileImage string          `json:"profileImage,omitempty"`
	Bio          string          `json:"bio,omitempty"`
	TotalOrders  int             `json:"totalOrders"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	MemberSince  time.Time       `json:"memberSince"`
	LastLogin    *time.Time      `json:"lastLogin,omitempty"`
	Preferences  Preferences     `json:"preferences"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewUserProfile создаёт профиль с нулевой статистикой.
func NewUserProfile(userID string, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:      userID,
		TotalSpent:  decimal.Zero,
		MemberSince: now,
		Preferences: Preferences{Newsletter: true, Notifications: true},
		UpdatedAt:   now,
	}
}

// Reconcile пересчитывает статистику профиля по полной истории заказов пользователя.
func (p *UserProfile) Reconcile(orders []Order) {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalPrice)
	}
	p.TotalOrders = len(orders)
	p.TotalSpent = total
}
