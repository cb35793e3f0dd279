// Package rgbled drives a three-channel LED from PWM outputs.
package rgbled

import (
	"context"
	"sync"
	"time"

	"hhgarden-go/services/hal/internal/registry"
	"hhgarden-go/types"
	"hhgarden-go/x/mathx"
	"hhgarden-go/x/ramp"
	"hhgarden-go/x/timex"
)

// Color is an 8-bit-per-channel colour.
type Color struct{ R, G, B uint8 }

var (
	Off   = Color{}
	White = Color{255, 255, 255}
)

type LED struct {
	gpio  *registry.Gpio
	names [3]string
	clock timex.Clock

	mu   sync.Mutex
	duty [3]uint16
}

type Option func(*LED)

func WithClock(c timex.Clock) Option { return func(l *LED) { l.clock = c } }

// New binds the red, green and blue PWMOutput peripherals.
func New(gpio *registry.Gpio, red, green, blue string, opts ...Option) *LED {
	l := &LED{gpio: gpio, names: [3]string{red, green, blue}, clock: timex.System}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Duty returns the last applied duty per channel, in [0..PWMTop].
func (l *LED) Duty() [3]uint16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.duty
}

// SetColor sets all three channels under one registry lock.
func (l *LED) SetColor(c Color) error {
	return l.apply(scale(c))
}

// Fade ramps from the current duty to c over d. A cancelled ctx leaves the
// LED at the last applied step and returns ctx.Err().
func (l *LED) Fade(ctx context.Context, c Color, d time.Duration, steps uint16) error {
	cur := l.Duty()
	to := scale(c)
	done, err := ramp.Linear(cur[:], to[:], types.PWMTop, d, steps,
		func(step time.Duration) bool { return l.clock.Sleep(ctx, step) },
		func(levels []uint16) error { return l.apply([3]uint16{levels[0], levels[1], levels[2]}) })
	if err != nil {
		return err
	}
	if !done {
		return ctx.Err()
	}
	return nil
}

func (l *LED) apply(duty [3]uint16) error {
	err := l.gpio.Do(func(tx registry.Tx) error {
		for i, name := range l.names {
			if err := tx.SetPWM(name, duty[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.duty = duty
	l.mu.Unlock()
	return nil
}

func scale(c Color) [3]uint16 {
	return [3]uint16{to16(c.R), to16(c.G), to16(c.B)}
}

func to16(v uint8) uint16 { return mathx.Scale(uint16(v), 255, types.PWMTop) }
