package models

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"pizzatrack/internal/geo"
)

type WhatsAppProvider string

const (
	WhatsAppNone      WhatsAppProvider = "none"
	WhatsAppOfficial  WhatsAppProvider = "official"
	WhatsAppEvolution WhatsAppProvider = "evolution"
)

type PaymentProvider string

const (
	PaymentProviderFunction PaymentProvider = "function"
	PaymentProviderLegacy   PaymentProvider = "legacy"
)

// Settings is the single pizzeria configuration row.
type Settings struct {
	ID        uint       `json:"-" gorm:"primaryKey"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Coords    geo.Coords `json:"coords"`
	Phone     string     `json:"phone"`
	OpenTime  string     `json:"openTime" gorm:"size:5"`
	CloseTime string     `json:"closeTime" gorm:"size:5"`

	WebhookURL     string `json:"webhookUrl"`
	WebhookEnabled bool   `json:"webhookEnabled"`

	WhatsAppProvider      WhatsAppProvider `json:"whatsappProvider" gorm:"column:whatsapp_provider;size:16"`
	WhatsAppAPIURL        string           `json:"whatsappApiUrl" gorm:"column:whatsapp_api_url"`
	WhatsAppAPIKey        string           `json:"whatsappApiKey" gorm:"column:whatsapp_api_key"`
	WhatsAppInstanceName  string           `json:"whatsappInstanceName" gorm:"column:whatsapp_instance_name"`
	WhatsAppPhoneNumberID string           `json:"whatsappPhoneNumberId" gorm:"column:whatsapp_phone_number_id"`

	PaymentEnabled  bool            `json:"paymentEnabled"`
	PaymentProvider PaymentProvider `json:"paymentProvider" gorm:"size:16"`
	PaymentEndpoint string          `json:"paymentEndpoint"`
	PaymentAPIKey   string          `json:"paymentApiKey" gorm:"column:payment_api_key"`

	GoogleMapsAPIKey string `json:"googleMapsApiKey" gorm:"column:google_maps_api_key"`
	LogoURL          string `json:"logoUrl" gorm:"column:logo_url"`
	BannerURL        string `json:"bannerUrl" gorm:"column:banner_url"`

	UpdatedAt time.Time `json:"updatedAt"`
}

const SettingsID uint = 1

func DefaultSettings() Settings {
	return Settings{
		ID:               SettingsID,
		Name:             "Pizzaria Bella Napoli",
		Address:          "Rua das Pizzas, 123 - Centro",
		Coords:           geo.Fallback,
		Phone:            "5511999999999",
		OpenTime:         "18:00",
		CloseTime:        "23:30",
		WhatsAppProvider: WhatsAppNone,
		PaymentProvider:  PaymentProviderFunction,
	}
}

// AfterFind replaces unreadable pizzeria coordinates with geo.Fallback.
func (s *Settings) AfterFind(tx *gorm.DB) error {
	if !s.Coords.Valid() {
		slog.Warn("stored pizzeria coordinates are invalid, using fallback", "coords", s.Coords.String())
		s.Coords = geo.Fallback
	}
	return nil
}

// WithDefaults fills empty fields from DefaultSettings and repairs the coordinates.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	s.ID = SettingsID
	if s.Name == "" {
		s.Name = d.Name
	}
	if s.Address == "" {
		s.Address = d.Address
	}
	if s.Phone == "" {
		s.Phone = d.Phone
	}
	if s.OpenTime == "" {
		s.OpenTime = d.OpenTime
	}
	if s.CloseTime == "" {
		s.CloseTime = d.CloseTime
	}
	if s.WhatsAppProvider == "" {
		s.WhatsAppProvider = d.WhatsAppProvider
	}
	if s.PaymentProvider == "" {
		s.PaymentProvider = d.PaymentProvider
	}
	if s.Coords == (geo.Coords{}) {
		s.Coords = d.Coords
	}
	s.Coords = geo.Sanitize(s.Coords)
	return s
}

func (s Settings) WebhookActive() bool {
	return s.WebhookEnabled && s.WebhookURL != ""
}

func (s Settings) MapsEnabled() bool {
	return s.GoogleMapsAPIKey != ""
}
