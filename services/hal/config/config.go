// Package config holds the controller's runtime settings.
package config

import (
	"fmt"
	"time"

	"hhgarden-go/services/hal/internal/gpioirq"
	"hhgarden-go/services/hal/internal/uartio"
	"hhgarden-go/services/hal/internal/wifi"
	"hhgarden-go/types"
)

type Config struct {
	// Board selects the built-in descriptor table; BoardFile, when set,
	// loads a YAML table instead.
	Board     string        `mapstructure:"board"`
	BoardFile string        `mapstructure:"board_file"`
	Capacity  int           `mapstructure:"capacity"`
	Debounce  time.Duration `mapstructure:"debounce"`
	Buttons   []string      `mapstructure:"buttons"`
	UART      UARTConfig    `mapstructure:"uart"`
	Wifi      WifiConfig    `mapstructure:"wifi"`
}

type UARTConfig struct {
	Tag   string `mapstructure:"tag"`
	Queue int    `mapstructure:"queue"`
	Baud  uint32 `mapstructure:"baud"`
}

type WifiConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SSID       string        `mapstructure:"ssid"`
	Password   string        `mapstructure:"password"`
	Auth       string        `mapstructure:"auth"`
	Step       time.Duration `mapstructure:"step"`
	Backoff    time.Duration `mapstructure:"backoff"`
	Hold       time.Duration `mapstructure:"hold"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// Defaults mirrors the firmware constants.
func Defaults() Config {
	return Config{
		Board:    "pico-hhg",
		Capacity: 16,
		Debounce: gpioirq.DefaultDebounce,
		Buttons:  []string{"Btn", "EncoderBtn"},
		UART:     UARTConfig{Tag: "uart0", Queue: uartio.DefaultQueue, Baud: 115200},
		Wifi: WifiConfig{
			Auth:       types.AuthWpa2.String(),
			Step:       wifi.DefaultStep,
			Backoff:    wifi.DefaultBackoff,
			MaxRetries: wifi.DefaultMaxRetries,
		},
	}
}

func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("config: capacity %d must be positive", c.Capacity)
	case c.Debounce < 0:
		return fmt.Errorf("config: negative debounce %v", c.Debounce)
	case c.UART.Queue <= 0:
		return fmt.Errorf("config: uart queue %d must be positive", c.UART.Queue)
	case c.UART.Tag == "":
		return fmt.Errorf("config: empty uart tag")
	case c.Wifi.MaxRetries < 0:
		return fmt.Errorf("config: negative wifi max_retries")
	}
	if _, ok := types.ParseAuth(c.Wifi.Auth); !ok {
		return fmt.Errorf("config: unknown wifi auth %q", c.Wifi.Auth)
	}
	if c.Wifi.Enabled {
		if err := c.Credentials().Validate(); err != nil {
			return fmt.Errorf("config: wifi: %w", err)
		}
	}
	return nil
}

// Credentials converts the Wi-Fi section for the state machine.
func (c Config) Credentials() wifi.Credentials {
	auth, _ := types.ParseAuth(c.Wifi.Auth)
	return wifi.Credentials{SSID: c.Wifi.SSID, Password: c.Wifi.Password, Auth: auth}
}

// FSMOptions converts the Wi-Fi timings.
func (c Config) FSMOptions() []wifi.Option {
	return []wifi.Option{
		wifi.WithStep(c.Wifi.Step),
		wifi.WithBackoff(c.Wifi.Backoff),
		wifi.WithHold(c.Wifi.Hold),
		wifi.WithMaxRetries(c.Wifi.MaxRetries),
	}
}
