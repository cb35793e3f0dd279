//go:build !(rp2040 || rp2350)

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads a YAML file over the defaults. Environment variables prefixed
// HHG_ override both, with nested keys joined by underscores
// (HHG_WIFI_SSID). An empty path skips the file.
func Load(path string) (Config, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("board", d.Board)
	v.SetDefault("board_file", d.BoardFile)
	v.SetDefault("capacity", d.Capacity)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("buttons", d.Buttons)
	v.SetDefault("uart.tag", d.UART.Tag)
	v.SetDefault("uart.queue", d.UART.Queue)
	v.SetDefault("uart.baud", d.UART.Baud)
	v.SetDefault("wifi.enabled", d.Wifi.Enabled)
	v.SetDefault("wifi.ssid", d.Wifi.SSID)
	v.SetDefault("wifi.password", d.Wifi.Password)
	v.SetDefault("wifi.auth", d.Wifi.Auth)
	v.SetDefault("wifi.step", d.Wifi.Step)
	v.SetDefault("wifi.backoff", d.Wifi.Backoff)
	v.SetDefault("wifi.hold", d.Wifi.Hold)
	v.SetDefault("wifi.max_retries", d.Wifi.MaxRetries)

	v.SetEnvPrefix("HHG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
