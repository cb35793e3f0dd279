package boards

import (
	"fmt"

	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/types"
)

// Board is a peripheral descriptor table plus the console wiring. It is
// data only; the registry gives it behaviour.
type Board struct {
	Name             string
	GPIOMin, GPIOMax uint32
	UART             types.UARTConfig
	Peripherals      []halcore.Config
}

// Validate rejects tables the registry would silently accept but the
// hardware cannot honour: duplicate names and out-of-range pins.
func (b Board) Validate() error {
	seen := make(map[string]struct{}, len(b.Peripherals))
	for _, p := range b.Peripherals {
		if !halcore.ValidName(p.Name) {
			return fmt.Errorf("board %s: invalid name %q", b.Name, p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("board %s: duplicate peripheral %q", b.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
		pin, ok := pinOf(p.Role)
		if ok && (pin < b.GPIOMin || pin > b.GPIOMax) {
			return fmt.Errorf("board %s: %s pin %d outside %d..%d", b.Name, p.Name, pin, b.GPIOMin, b.GPIOMax)
		}
	}
	return nil
}

func pinOf(r halcore.Role) (uint32, bool) {
	switch v := r.(type) {
	case halcore.Input:
		return v.Pin, true
	case halcore.AnalogInput:
		return v.Pin, true
	case halcore.Output:
		return v.Pin, true
	case halcore.PWMOutput:
		return v.Pin, true
	case halcore.Passthrough:
		return v.Pin, true
	}
	return 0, false
}

// Find returns the peripheral called name.
func (b Board) Find(name string) (halcore.Config, bool) {
	for _, p := range b.Peripherals {
		if p.Name == name {
			return p, true
		}
	}
	return halcore.Config{}, false
}

// Builtin returns a compiled-in board by name.
func Builtin(name string) (Board, bool) {
	switch name {
	case "", "pico-hhg":
		return PicoHHG(), true
	}
	return Board{}, false
}
