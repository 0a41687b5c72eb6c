package totem

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultInactivityTimeout = 90
	DefaultWarning           = 15
	// shortest timeout that still leaves a one-second warning
	MinInactivityTimeout = 2
	MaxEventLog          = 100
)

// Config is the runtime kiosk configuration served to totem devices.
// Timeouts are in seconds.
type Config struct {
	StoreID                  int    `json:"storeId"`
	InactivityTimeoutSeconds int    `json:"inactivityTimeoutSeconds"`
	WarningSeconds           int    `json:"warningSeconds"`
	EventLogLimit            int    `json:"eventLogLimit"`
	WelcomeMessage           string `json:"welcomeMessage,omitempty"`
}

func (c *Config) applyDefaults() {
	switch {
	case c.InactivityTimeoutSeconds <= 0:
		c.InactivityTimeoutSeconds = DefaultInactivityTimeout
	case c.InactivityTimeoutSeconds < MinInactivityTimeout:
		c.InactivityTimeoutSeconds = MinInactivityTimeout
	}
	if c.WarningSeconds <= 0 || c.WarningSeconds >= c.InactivityTimeoutSeconds {
		c.WarningSeconds = DefaultWarning
		if c.WarningSeconds >= c.InactivityTimeoutSeconds {
			c.WarningSeconds = max(c.InactivityTimeoutSeconds/2, 1)
		}
	}
	if c.EventLogLimit <= 0 || c.EventLogLimit > MaxEventLog {
		c.EventLogLimit = MaxEventLog
	}
}

// LoadConfig reads the kiosk config file. A missing file yields the
// defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		zap.S().Warnw("totem config not found, using defaults", "path", path)
	case err != nil:
		return nil, errors.Wrapf(err, "read totem config %s", path)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse totem config %s", path)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}
