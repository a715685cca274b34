package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"pizzatrack/internal/geo"
	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
	"pizzatrack/internal/store"
)

type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Public() PublicProfile
	Save(ctx context.Context, settings *models.Settings) (*models.Settings, error)
	TestWebhook(ctx context.Context) error
	ResetCatalog(ctx context.Context) error
	UploadImage(ctx context.Context, folder, filename string, r io.Reader, contentType string) (string, error)
}

// PublicProfile is the part of the settings the storefront may see. No
// credentials.
type PublicProfile struct {
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	Phone          string     `json:"phone"`
	Coords         geo.Coords `json:"coords"`
	OpenTime       string     `json:"openTime"`
	CloseTime      string     `json:"closeTime"`
	IsOpen         bool       `json:"isOpen"`
	LogoURL        string     `json:"logoUrl,omitempty"`
	BannerURL      string     `json:"bannerUrl,omitempty"`
	PaymentEnabled bool       `json:"paymentEnabled"`
}

var imageFolders = map[string]bool{"products": true, "branding": true}

type settingsService struct {
	settings   repository.SettingsRepository
	categories repository.CategoryRepository
	store      *store.Store
	notifier   *Notifier
	images     ImageStore
}

// NewSettingsService accepts a nil ImageStore; uploads then fail with
// ErrStorageDisabled.
func NewSettingsService(settings repository.SettingsRepository, categories repository.CategoryRepository, st *store.Store, notifier *Notifier, images ImageStore) SettingsService {
	return &settingsService{settings: settings, categories: categories, store: st, notifier: notifier, images: images}
}

func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) Public() PublicProfile {
	return publicProfile(s.store.Settings())
}

func publicProfile(st models.Settings) PublicProfile {
	return PublicProfile{
		Name:           st.Name,
		Address:        st.Address,
		Phone:          st.Phone,
		Coords:         st.Coords,
		OpenTime:       st.OpenTime,
		CloseTime:      st.CloseTime,
		IsOpen:         IsOpenAt(st.OpenTime, st.CloseTime, time.Now()),
		LogoURL:        st.LogoURL,
		BannerURL:      st.BannerURL,
		PaymentEnabled: st.PaymentEnabled,
	}
}

// IsOpenAt reports whether now falls in the [open, close) window given as
// "HH:MM". A close time before the open time spans midnight. Unparseable
// times count as open.
func IsOpenAt(openTime, closeTime string, now time.Time) bool {
	o, err1 := time.Parse("15:04", openTime)
	c, err2 := time.Parse("15:04", closeTime)
	if err1 != nil || err2 != nil {
		return true
	}
	minutes := now.Hour()*60 + now.Minute()
	om := o.Hour()*60 + o.Minute()
	cm := c.Hour()*60 + c.Minute()
	if om == cm {
		return true
	}
	if om < cm {
		return minutes >= om && minutes < cm
	}
	return minutes >= om || minutes < cm
}

// Save persists the whole object. Empty fields fall back to the defaults and
// the coordinates are repaired the same way they are on load.
func (s *settingsService) Save(ctx context.Context, settings *models.Settings) (*models.Settings, error) {
	switch settings.WhatsAppProvider {
	case "", models.WhatsAppNone, models.WhatsAppOfficial, models.WhatsAppEvolution:
	default:
		return nil, validationError("unknown whatsapp provider %q", settings.WhatsAppProvider)
	}
	switch settings.PaymentProvider {
	case "", models.PaymentProviderFunction, models.PaymentProviderLegacy:
	default:
		return nil, validationError("unknown payment provider %q", settings.PaymentProvider)
	}
	for _, t := range []string{settings.OpenTime, settings.CloseTime} {
		if t == "" {
			continue
		}
		if _, err := time.Parse("15:04", t); err != nil {
			return nil, validationError("time %q must be HH:MM", t)
		}
	}

	merged := settings.WithDefaults()
	merged.WebhookURL = strings.TrimSpace(merged.WebhookURL)
	merged.WhatsAppAPIURL = strings.TrimRight(strings.TrimSpace(merged.WhatsAppAPIURL), "/")

	if err := s.settings.Save(ctx, &merged); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	s.store.Dispatch(store.UpdateSettings{Settings: merged})
	return &merged, nil
}

func (s *settingsService) TestWebhook(ctx context.Context) error {
	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}
	return s.notifier.TestWebhook(ctx, *settings)
}

// ResetCatalog deletes every product and category. It cannot be undone.
func (s *settingsService) ResetCatalog(ctx context.Context) error {
	if err := s.categories.ResetCatalog(ctx); err != nil {
		return fmt.Errorf("reset catalog: %w", err)
	}
	s.store.Dispatch(store.ResetProducts{})
	return nil
}

func (s *settingsService) UploadImage(ctx context.Context, folder, filename string, r io.Reader, contentType string) (string, error) {
	if s.images == nil {
		return "", ErrStorageDisabled
	}
	if !imageFolders[folder] {
		return "", validationError("unknown image folder %q", folder)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", validationError("only images can be uploaded, got %q", contentType)
	}

	ext := strings.ToLower(path.Ext(filename))
	key := folder + "/" + uuid.NewString() + ext
	url, err := s.images.Put(ctx, key, r, contentType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}
