package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CommissionConfig is the operator-tunable commission policy.
type CommissionConfig struct {
	DefaultCurrency  string              `mapstructure:"defaultCurrency"`
	DefaultPartnerID string              `mapstructure:"defaultPartnerId"`
	RecentLimit      int                 `mapstructure:"recentLimit"`
	Notifications    NotificationsPolicy `mapstructure:"notifications"`
}

type NotificationsPolicy struct {
	Enabled bool `mapstructure:"enabled"`
}

func DefaultCommissionConfig() CommissionConfig {
	return CommissionConfig{
		DefaultCurrency: "USD",
		RecentLimit:     10,
		Notifications: NotificationsPolicy{
			Enabled: true,
		},
	}
}

type CommissionConfigHolder struct {
	current atomic.Value // holds CommissionConfig
}

// NewStaticCommissionConfig returns a holder that never reloads.
func NewStaticCommissionConfig(cfg CommissionConfig) *CommissionConfigHolder {
	holder := &CommissionConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewCommissionConfigHolder() (*CommissionConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("commission")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/partnerledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PARTNERLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCommissionConfig()
	v.SetDefault("commission.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("commission.defaultPartnerId", defaults.DefaultPartnerID)
	v.SetDefault("commission.recentLimit", defaults.RecentLimit)
	v.SetDefault("commission.notifications.enabled", defaults.Notifications.Enabled)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg CommissionConfig
	if err := v.UnmarshalKey("commission", &cfg); err != nil {
		return nil, err
	}
	if err := validateCommissionConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticCommissionConfig(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CommissionConfig
		if err := v.UnmarshalKey("commission", &updated); err != nil {
			log.Printf("[commission-config] reload failed: %v", err)
			return
		}
		if err := validateCommissionConfig(updated); err != nil {
			log.Printf("[commission-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[commission-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *CommissionConfigHolder) Get() CommissionConfig {
	if h == nil {
		return DefaultCommissionConfig()
	}
	cfg, ok := h.current.Load().(CommissionConfig)
	if !ok {
		return DefaultCommissionConfig()
	}
	return cfg
}

func validateCommissionConfig(cfg CommissionConfig) error {
	if len(strings.TrimSpace(cfg.DefaultCurrency)) != 3 {
		return errors.New("commission.defaultCurrency must be a 3-letter code")
	}
	if cfg.RecentLimit <= 0 {
		return errors.New("commission.recentLimit must be positive")
	}
	return nil
}
