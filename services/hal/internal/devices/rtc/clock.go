// Package rtc reads and sets wall time on the DS3231 real-time clock.
package rtc

import (
	"errors"
	"sync"
	"time"

	"hhgarden-go/errcode"
	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/x/logx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// BusSource resolves an I2C bus brought up by a passthrough peripheral.
type BusSource interface {
	I2C(id string) (drivers.I2C, bool)
}

// Clock is a DS3231 on a shared I2C bus. Calls are serialised; the bus
// itself is shared with the display.
type Clock struct {
	mu  sync.Mutex
	dev ds3231.Device
	log *logx.Logger
}

// New looks up the bus named in the passthrough payload. The peripheral must
// already have been configured by the registry.
func New(buses BusSource, chip halcore.I2CDevice) (*Clock, error) {
	if buses == nil {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "rtc.new", Msg: "no i2c buses", Err: halerr.ErrUnsupported}
	}
	bus, ok := buses.I2C(chip.Bus)
	if !ok {
		return nil, &errcode.E{C: errcode.NotFound, Op: "rtc.new", Msg: chip.Bus, Err: halerr.ErrNotFound}
	}
	dev := ds3231.New(bus)
	if chip.Addr != 0 {
		dev.Address = chip.Addr
	}
	return &Clock{dev: dev, log: logx.New("RTC")}, nil
}

// Init starts the oscillator if it was stopped.
func (c *Clock) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dev.Configure() {
		return errors.New("rtc: configure failed")
	}
	if !c.dev.IsRunning() {
		c.log.Info("starting oscillator")
		if err := c.dev.SetRunning(true); err != nil {
			return err
		}
	}
	return nil
}

// Valid reports whether the stored time survived the last power loss.
func (c *Clock) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.IsTimeValid()
}

func (c *Clock) Now() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.ReadTime()
}

// Set stores t, truncated to the second, in UTC.
func (c *Clock) Set(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Info("set", logx.String("time", t.UTC().Format(time.RFC3339)))
	return c.dev.SetTime(t.UTC().Truncate(time.Second))
}

// Temperature returns the die temperature in milli-degrees Celsius.
func (c *Clock) Temperature() (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.ReadTemperature()
}
