// Package platform provides the board support the HAL core runs on: a
// capability table, the console UART, the radio and any I2C buses brought
// up by passthrough peripherals.
package platform

import (
	"hhgarden-go/services/hal/internal/halcore"

	"tinygo.org/x/drivers"
)

// I2CBusFactory resolves a bus by identity ("i2c0", "i2c1").
type I2CBusFactory interface {
	I2C(id string) (drivers.I2C, bool)
}

// Bundle is everything the application needs from one platform.
type Bundle struct {
	Caps  halcore.Capabilities
	UART  halcore.UARTPort
	Radio halcore.Radio
	Buses I2CBusFactory
}
