package boards

import (
	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/types"
)

// Well-known peripheral names on the garden controller.
const (
	EncoderCCW   = "EncoderCCW"
	EncoderCW    = "EncoderCW"
	EncoderBtn   = "EncoderBtn"
	Btn          = "Btn"
	LedRed       = "LedRed"
	LedGreen     = "LedGreen"
	LedBlue      = "LedBlue"
	InternalLed  = "InternalLed"
	InternalTemp = "InternalTemp"
	Relay1       = "Relay1"
	Relay2       = "Relay2"
	Relay3       = "Relay3"
	Relay4       = "Relay4"
	Rtc          = "Rtc"
	Display      = "Display"
)

// Relays lists the relay outputs in bank order.
var Relays = []string{Relay1, Relay2, Relay3, Relay4}

// Shared I2C wiring for the clock and the display.
var i2cBus = halcore.I2CDevice{Bus: "i2c1", SDA: 2, SCL: 3, Hz: 100_000}

func onBus(addr uint16, driver string) halcore.I2CDevice {
	d := i2cBus
	d.Addr, d.Driver = addr, driver
	return d
}

// PicoHHG is the Raspberry Pi Pico W garden controller.
func PicoHHG() Board {
	uart := types.DefaultUART()
	uart.Name = "console"
	return Board{
		Name:    "pico-hhg",
		GPIOMin: 0,
		GPIOMax: 29,
		UART:    uart,
		Peripherals: []halcore.Config{
			halcore.NewConfig(EncoderCCW, halcore.Input{Pin: 20, Pull: types.PullDown}),
			halcore.NewConfig(EncoderCW, halcore.Input{Pin: 21, Pull: types.PullDown}),
			halcore.NewConfig(EncoderBtn, halcore.Input{Pin: 19, Pull: types.PullUp}),
			halcore.NewConfig(Btn, halcore.Input{Pin: 18, Pull: types.PullUp}),
			halcore.NewConfig(LedRed, halcore.PWMOutput{Pin: 13}),
			halcore.NewConfig(LedGreen, halcore.PWMOutput{Pin: 14}),
			halcore.NewConfig(LedBlue, halcore.PWMOutput{Pin: 15}),
			halcore.NewConfig(InternalLed, halcore.Output{Pin: 0}),
			halcore.NewConfig(InternalTemp, halcore.AnalogInput{Pin: 0, Channel: 4}),
			halcore.NewConfig(Relay1, halcore.Output{Pin: 6}),
			halcore.NewConfig(Relay2, halcore.Output{Pin: 7}),
			halcore.NewConfig(Relay3, halcore.Output{Pin: 8}),
			halcore.NewConfig(Relay4, halcore.Output{Pin: 9}),
			halcore.NewConfig(Rtc, halcore.Passthrough{Pin: 2, Payload: onBus(0x68, "ds3231")}),
			halcore.NewConfig(Display, halcore.Passthrough{Pin: 2, Payload: onBus(0x3C, "sh1106")}),
		},
	}
}
