package boards

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/types"
)

// File is the on-disk shape of a board description.
type File struct {
	Name string `yaml:"name"`
	GPIO struct {
		Min uint32 `yaml:"min"`
		Max uint32 `yaml:"max"`
	} `yaml:"gpio"`
	UART        *UARTEntry        `yaml:"uart"`
	Peripherals []PeripheralEntry `yaml:"peripherals"`
}

type UARTEntry struct {
	Name     string `yaml:"name"`
	Baud     uint32 `yaml:"baud"`
	DataBits uint8  `yaml:"data_bits"`
	StopBits uint8  `yaml:"stop_bits"` // 1 | 2
	Parity   string `yaml:"parity"`    // none | even | odd
	Flow     string `yaml:"flow"`      // none | rtscts
}

type PeripheralEntry struct {
	Name    string    `yaml:"name"`
	Role    string    `yaml:"role"` // input | analog | output | pwm | passthrough | none
	Pin     uint32    `yaml:"pin"`
	Pull    string    `yaml:"pull"` // none | up | down
	Default uint32    `yaml:"default"`
	Channel uint32    `yaml:"channel"`
	Rank    uint32    `yaml:"rank"`
	I2C     *I2CEntry `yaml:"i2c"`
}

type I2CEntry struct {
	Bus    string `yaml:"bus"`
	SDA    uint32 `yaml:"sda"`
	SCL    uint32 `yaml:"scl"`
	Hz     uint32 `yaml:"hz"`
	Addr   uint16 `yaml:"addr"`
	Driver string `yaml:"driver"`
}

// Parse decodes and validates a YAML board description.
func Parse(data []byte) (Board, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Board{}, fmt.Errorf("board yaml: %w", err)
	}
	return f.Board()
}

// Board converts the file into a validated descriptor table.
func (f File) Board() (Board, error) {
	b := Board{Name: f.Name, GPIOMin: f.GPIO.Min, GPIOMax: f.GPIO.Max, UART: types.DefaultUART()}
	if b.GPIOMax == 0 {
		b.GPIOMax = 29
	}
	if f.UART != nil {
		u, err := f.UART.config()
		if err != nil {
			return Board{}, err
		}
		b.UART = u
	}
	for _, p := range f.Peripherals {
		role, err := p.role()
		if err != nil {
			return Board{}, fmt.Errorf("peripheral %q: %w", p.Name, err)
		}
		b.Peripherals = append(b.Peripherals, halcore.NewConfig(p.Name, role))
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

func (p PeripheralEntry) role() (halcore.Role, error) {
	switch strings.ToLower(p.Role) {
	case "input":
		pull, err := parsePull(p.Pull)
		if err != nil {
			return nil, err
		}
		return halcore.Input{Pin: p.Pin, Pull: pull, Default: p.Default}, nil
	case "analog":
		return halcore.AnalogInput{Pin: p.Pin, Channel: p.Channel, Rank: p.Rank}, nil
	case "output":
		return halcore.Output{Pin: p.Pin, Default: p.Default}, nil
	case "pwm":
		return halcore.PWMOutput{Pin: p.Pin, Default: p.Default}, nil
	case "passthrough":
		if p.I2C == nil {
			return halcore.Passthrough{Pin: p.Pin}, nil
		}
		return halcore.Passthrough{Pin: p.Pin, Payload: halcore.I2CDevice{
			Bus: p.I2C.Bus, SDA: p.I2C.SDA, SCL: p.I2C.SCL, Hz: p.I2C.Hz,
			Addr: p.I2C.Addr, Driver: p.I2C.Driver,
		}}, nil
	case "", "none":
		return halcore.NotInitialized{}, nil
	}
	return nil, fmt.Errorf("unknown role %q", p.Role)
}

func parsePull(s string) (types.Pull, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return types.PullNone, nil
	case "up":
		return types.PullUp, nil
	case "down":
		return types.PullDown, nil
	}
	return 0, fmt.Errorf("unknown pull %q", s)
}

func (u UARTEntry) config() (types.UARTConfig, error) {
	c := types.DefaultUART()
	if u.Name != "" {
		c.Name = u.Name
	}
	if u.Baud != 0 {
		c.Baud = u.Baud
	}
	if u.DataBits != 0 {
		c.DataBits = u.DataBits
	}
	switch u.StopBits {
	case 0, 1:
		c.StopBits = types.StopBitsOne
	case 2:
		c.StopBits = types.StopBitsTwo
	default:
		return c, fmt.Errorf("uart: stop bits %d", u.StopBits)
	}
	switch strings.ToLower(u.Parity) {
	case "", "none":
		c.Parity = types.ParityNone
	case "even":
		c.Parity = types.ParityEven
	case "odd":
		c.Parity = types.ParityOdd
	default:
		return c, fmt.Errorf("uart: parity %q", u.Parity)
	}
	switch strings.ToLower(u.Flow) {
	case "", "none":
		c.Flow = types.FlowNone
	case "rtscts":
		c.Flow = types.FlowRTSCTS
	default:
		return c, fmt.Errorf("uart: flow %q", u.Flow)
	}
	return c, nil
}
