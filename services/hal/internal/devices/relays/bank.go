// Package relays drives the irrigation relay outputs as one bank.
package relays

import (
	"slices"

	"hhgarden-go/errcode"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/services/hal/internal/registry"
	"hhgarden-go/x/logx"
)

// Bank is a fixed set of Output peripherals that switch valves or pumps.
// Every change goes through the registry lock, so a SetMany is never
// interleaved with another caller's writes.
type Bank struct {
	gpio  *registry.Gpio
	names []string
	log   *logx.Logger
}

func New(gpio *registry.Gpio, names ...string) *Bank {
	return &Bank{gpio: gpio, names: slices.Clone(names), log: logx.New("Relays")}
}

// Names returns the relays in bank order.
func (b *Bank) Names() []string { return slices.Clone(b.names) }

func (b *Bank) Set(name string, on bool) error {
	return b.SetMany(map[string]bool{name: on})
}

// SetMany applies every entry under one registry lock. Names are checked
// before anything is written.
func (b *Bank) SetMany(states map[string]bool) error {
	for name := range states {
		if !slices.Contains(b.names, name) {
			return &errcode.E{C: errcode.InvalidName, Op: "relays.set", Msg: name, Err: halerr.ErrInvalidName}
		}
	}
	return b.gpio.Do(func(tx registry.Tx) error {
		for _, name := range b.names {
			on, ok := states[name]
			if !ok {
				continue
			}
			if err := tx.Write(name, level(on)); err != nil {
				return err
			}
			b.log.Debug("relay", logx.String("name", name), logx.Bool("on", on))
		}
		return nil
	})
}

// AllOff opens every relay.
func (b *Bank) AllOff() error {
	states := make(map[string]bool, len(b.names))
	for _, n := range b.names {
		states[n] = false
	}
	return b.SetMany(states)
}

func level(on bool) uint32 {
	if on {
		return 1
	}
	return 0
}
