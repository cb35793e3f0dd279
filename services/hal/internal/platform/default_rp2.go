//go:build rp2040 || rp2350

package platform

import "hhgarden-go/services/hal/internal/halcore"

// Console UART pins. GP0 is left to the board table.
const (
	consoleTX = 16
	consoleRX = 17
)

// Default returns the Pico platform. The radio chip has no driver here, so
// the Wi-Fi state machine reports Error and gives up.
func Default() Bundle {
	p := NewRP2()
	return Bundle{
		Caps:  p,
		UART:  NewRP2UART("uart0", consoleTX, consoleRX),
		Radio: halcore.NoRadio{},
		Buses: p,
	}
}
