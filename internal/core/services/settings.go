package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEngineAddresses = "engine.addresses"
	keyEngineUsername  = "engine.username"
	keyEnginePassword  = "engine.password"
	keyEngineInsecure  = "engine.insecure_skip_verify"
	keyEngineLegacy    = "engine.legacy_types"
	keyEngineTimeout   = "engine.timeout_seconds"
	keySyncConcurrency = "sync.concurrency"
	keySyncRateLimit   = "sync.rate_limit"
	keyMetricsAddr     = "metrics.addr"
	keyEventsNatsURL   = "events.nats_url"
	keyEventsSubject   = "events.subject"
)

// Environment variables that override stored engine settings.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvEngineURL      = "OSLO_ENGINE_URL"
	EnvEngineUsername = "OSLO_ENGINE_USERNAME"
	EnvEnginePassword = "OSLO_ENGINE_PASSWORD"
	EnvEngineInsecure = "OSLO_ENGINE_INSECURE"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// Environment overrides are read from the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Engine: domain.EngineSettings{
			Addresses:          s.getStringSlice(keyEngineAddresses, defaults.Engine.Addresses),
			Username:           s.configStore.GetString(keyEngineUsername),
			Password:           s.configStore.GetString(keyEnginePassword),
			InsecureSkipVerify: s.getBool(keyEngineInsecure, defaults.Engine.InsecureSkipVerify),
			LegacyTypes:        s.getBool(keyEngineLegacy, defaults.Engine.LegacyTypes),
			Timeout:            time.Duration(s.configStore.GetInt(keyEngineTimeout)) * time.Second,
		},
		Sync: domain.SyncSettings{
			Concurrency: s.getInt(keySyncConcurrency, defaults.Sync.Concurrency),
			RateLimit:   s.configStore.GetFloat(keySyncRateLimit),
		},
		Metrics: domain.MetricsSettings{
			Addr: s.configStore.GetString(keyMetricsAddr),
		},
		Events: domain.EventSettings{
			NatsURL: s.configStore.GetString(keyEventsNatsURL),
			Subject: s.getString(keyEventsSubject, defaults.Events.Subject),
		},
	}

	if err := s.applyEnv(&settings.Engine); err != nil {
		return nil, err
	}

	return settings, nil
}

// applyEnv overlays engine settings from the environment.
func (s *SettingsService) applyEnv(engine *domain.EngineSettings) error {
	if v := s.getenv(EnvEngineURL); v != "" {
		engine.Addresses = splitList(v)
	}
	if v := s.getenv(EnvEngineUsername); v != "" {
		engine.Username = v
	}
	if v := s.getenv(EnvEnginePassword); v != "" {
		engine.Password = v
	}
	if v := s.getenv(EnvEngineInsecure); v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, EnvEngineInsecure, v)
		}
		engine.InsecureSkipVerify = insecure
	}
	return nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.saveEngine(settings.Engine); err != nil {
		return err
	}

	if err := s.configStore.Set(keySyncConcurrency, settings.Sync.Concurrency); err != nil {
		return fmt.Errorf("save sync concurrency: %w", err)
	}
	if err := s.configStore.Set(keySyncRateLimit, settings.Sync.RateLimit); err != nil {
		return fmt.Errorf("save sync rate_limit: %w", err)
	}
	if err := s.configStore.Set(keyMetricsAddr, settings.Metrics.Addr); err != nil {
		return fmt.Errorf("save metrics addr: %w", err)
	}
	if err := s.configStore.Set(keyEventsNatsURL, settings.Events.NatsURL); err != nil {
		return fmt.Errorf("save events nats_url: %w", err)
	}
	if err := s.configStore.Set(keyEventsSubject, settings.Events.Subject); err != nil {
		return fmt.Errorf("save events subject: %w", err)
	}

	return nil
}

// SetEngine updates the engine connection settings.
func (s *SettingsService) SetEngine(engine domain.EngineSettings) error {
	settings := domain.DefaultAppSettings()
	settings.Engine = engine
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.saveEngine(engine)
}

func (s *SettingsService) saveEngine(engine domain.EngineSettings) error {
	if err := s.configStore.Set(keyEngineAddresses, engine.Addresses); err != nil {
		return fmt.Errorf("save engine addresses: %w", err)
	}
	if err := s.configStore.Set(keyEngineUsername, engine.Username); err != nil {
		return fmt.Errorf("save engine username: %w", err)
	}
	if engine.Password != "" {
		if err := s.configStore.Set(keyEnginePassword, engine.Password); err != nil {
			return fmt.Errorf("save engine password: %w", err)
		}
	}
	if err := s.configStore.Set(keyEngineInsecure, engine.InsecureSkipVerify); err != nil {
		return fmt.Errorf("save engine insecure_skip_verify: %w", err)
	}
	if err := s.configStore.Set(keyEngineLegacy, engine.LegacyTypes); err != nil {
		return fmt.Errorf("save engine legacy_types: %w", err)
	}
	if err := s.configStore.Set(keyEngineTimeout, int(engine.Timeout/time.Second)); err != nil {
		return fmt.Errorf("save engine timeout_seconds: %w", err)
	}
	return nil
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getStringSlice accepts either a TOML array or a comma-separated string.
func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if vals := s.configStore.GetStringSlice(key); len(vals) > 0 {
		return vals
	}
	if val := s.configStore.GetString(key); val != "" {
		return splitList(val)
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
