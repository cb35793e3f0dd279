package config

import (
	"errors"
	"strings"
	"testing"

	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
)

func TestDefaultsValid(t *testing.T) {
	d := Defaults()
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	if d.Capacity != 16 || d.UART.Queue != 64 || d.Wifi.MaxRetries != 5 {
		t.Fatalf("defaults %+v", d)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
		want string
	}{
		{"capacity", func(c *Config) { c.Capacity = 0 }, "capacity"},
		{"queue", func(c *Config) { c.UART.Queue = -1 }, "queue"},
		{"tag", func(c *Config) { c.UART.Tag = "" }, "tag"},
		{"auth", func(c *Config) { c.Wifi.Auth = "wpa9" }, "auth"},
		{"retries", func(c *Config) { c.Wifi.MaxRetries = -1 }, "max_retries"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Defaults()
			tc.mod(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestEnabledWifiNeedsCredentials(t *testing.T) {
	c := Defaults()
	c.Wifi.Enabled = true
	if err := c.Validate(); !errors.Is(err, halerr.ErrInvalidName) {
		t.Fatalf("empty ssid: %v", err)
	}
	c.Wifi.SSID = "garden"
	c.Wifi.Password = strings.Repeat("p", 33)
	if err := c.Validate(); !errors.Is(err, halerr.ErrInvalidName) {
		t.Fatalf("long password: %v", err)
	}
	c.Wifi.Password = "secret"
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if cr := c.Credentials(); cr.Auth != types.AuthWpa2 || cr.SSID != "garden" {
		t.Fatalf("credentials %+v", cr)
	}
}
