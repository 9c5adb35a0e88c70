package model

import "fmt"

// AddressPatch описывает частичное обновление адреса. Пустые поля не изменяются.
type AddressPatch struct {
	FullName      string `json:"fullName,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	ZipCode       string `json:"zipCode,omitempty"`
	Country       string `json:"country,omitempty"`
	AddressType   string `json:"addressType,omitempty"`
	IsDefault     *bool  `json:"isDefault,omitempty"`
}

// Apply применяет изменения к адресу. Признак по умолчанию обрабатывается вызывающей стороной.
func (a *Address) Apply(p AddressPatch) {
	setIfNotEmpty(&a.FullName, p.FullName)
	setIfNotEmpty(&a.PhoneNumber, p.PhoneNumber)
	setIfNotEmpty(&a.StreetAddress, p.StreetAddress)
	setIfNotEmpty(&a.City, p.City)
	setIfNotEmpty(&a.State, p.State)
	setIfNotEmpty(&a.ZipCode, p.ZipCode)
	setIfNotEmpty(&a.Country, p.Country)
	setIfNotEmpty(&a.AddressType, p.AddressType)
}

// Validate проверяет обязательные поля адреса.
func (a Address) Validate() error {
	required := []struct{ name, value string }{
		{"userId", a.UserID},
		{"fullName", a.FullName},
		{"phoneNumber", a.PhoneNumber},
		{"streetAddress", a.StreetAddress},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
		{"country", a.Country},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}
	return nil
}

// PreferencesPatch описывает частичное обновление настроек.
type PreferencesPatch struct {
	Newsletter    *bool `json:"newsletter,omitempty"`
	Notifications *bool `json:"notifications,omitempty"`
}

// ProfilePatch описывает частичное обновление профиля. Пустые поля не изменяются.
// Статистика заказов через патч не изменяется.
type ProfilePatch struct {
	FirstName    string            `json:"firstName,omitempty"`
	LastName     string            `json:"lastName,omitempty"`
	Email        string            `json:"email,omitempty"`
	PhoneNumber  string            `json:"phoneNumber,omitempty"`
	ProfileImage string            `json:"profileImage,omitempty"`
	Bio          string            `json:"bio,omitempty"`
	Preferences  *PreferencesPatch `json:"preferences,omitempty"`
}

// Apply применяет изменения к профилю.
func (p *UserProfile) Apply(patch ProfilePatch) {
	setIfNotEmpty(&p.FirstName, patch.FirstName)
	setIfNotEmpty(&p.LastName, patch.LastName)
	setIfNotEmpty(&p.Email, patch.Email)
	setIfNotEmpty(&p.PhoneNumber, patch.PhoneNumber)
	setIfNotEmpty(&p.ProfileImage, patch.ProfileImage)
	setIfNotEmpty(&p.Bio, patch.Bio)

	if patch.Preferences != nil {
		if v := patch.Preferences.Newsletter; v != nil {
			p.Preferences.Newsletter = *v
		}
		if v := patch.Preferences.Notifications; v != nil {
			p.Preferences.Notifications = *v
		}
	}
}
