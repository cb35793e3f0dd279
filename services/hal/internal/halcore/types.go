// services/hal/internal/halcore/types.go
package halcore

import (
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
)

// ---- Peripheral roles ----

// Base is an opaque hardware-block handle supplied by the platform layer.
// The core stores and forwards it; it never inspects it. nil means "none".
type Base any

type RoleKind uint8

const (
	KindNotInitialized RoleKind = iota
	KindInput
	KindAnalogInput
	KindOutput
	KindPWMOutput
	KindPassthrough
)

func (k RoleKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAnalogInput:
		return "analog_input"
	case KindOutput:
		return "output"
	case KindPWMOutput:
		return "pwm_output"
	case KindPassthrough:
		return "passthrough"
	default:
		return "not_initialized"
	}
}

// Role is the hardware role bound to a peripheral name. The concrete type
// selects which capability applies.
type Role interface {
	Kind() RoleKind
}

type NotInitialized struct{}

type Input struct {
	Base    Base
	Pin     uint32
	Pull    types.Pull
	Default uint32
}

type AnalogInput struct {
	Base    Base
	Pin     uint32
	Channel uint32
	Rank    uint32
}

type Output struct {
	Base    Base
	Pin     uint32
	Default uint32
}

type PWMOutput struct {
	Base    Base
	Pin     uint32
	Default uint32
}

// Passthrough hands an opaque payload (a bus, a driver config) to the
// platform's passthrough capability.
type Passthrough struct {
	Base    Base
	Pin     uint32
	Payload any
}

func (NotInitialized) Kind() RoleKind { return KindNotInitialized }
func (Input) Kind() RoleKind          { return KindInput }
func (AnalogInput) Kind() RoleKind    { return KindAnalogInput }
func (Output) Kind() RoleKind         { return KindOutput }
func (PWMOutput) Kind() RoleKind      { return KindPWMOutput }
func (Passthrough) Kind() RoleKind    { return KindPassthrough }

// ---- Peripheral configuration ----

// MaxNameLen bounds a peripheral name in bytes.
const MaxNameLen = 32

// InterruptHandler runs in interrupt context: it must not block, allocate,
// or take the registry lock.
type InterruptHandler func()

// InterruptConfig records a live interrupt on an Input.
type InterruptConfig struct {
	Kind    types.InterruptKind
	Enabled bool
	Handler InterruptHandler
}

// Config is one named peripheral. Identity is the name.
type Config struct {
	Name      string
	Role      Role
	Interrupt *InterruptConfig // set by SetInterrupt
}

func NewConfig(name string, role Role) Config {
	if role == nil {
		role = NotInitialized{}
	}
	return Config{Name: name, Role: role}
}

// Equal compares by name only.
func (c Config) Equal(o Config) bool { return c.Name == o.Name }

func ValidName(name string) bool { return name != "" && len(name) <= MaxNameLen }

// ---- Platform capabilities ----

// Capabilities is the platform vtable the registry drives. Implementations
// embed Unsupported and override what the hardware provides; anything left
// unimplemented reports ErrUnsupported (or false for boolean operations).
type Capabilities interface {
	Init() error
	ConfigureInput(c Config, base Base, pin uint32, pull types.Pull, def uint32) error
	ConfigureAnalog(c Config, base Base, pin, channel, rank uint32) error
	ConfigureOutput(c Config, base Base, pin, def uint32) error
	ConfigurePWM(c Config, base Base, pin, def uint32) error
	ConfigurePassthrough(c Config, base Base, pin uint32, payload any) error
	Read(c Config, base Base, pin uint32) (uint32, error)
	Write(c Config, base Base, pin, value uint32) bool
	SetPWM(c Config, base Base, pin, duty uint32) bool
	SetInterrupt(c Config, base Base, pin uint32, kind types.InterruptKind, h InterruptHandler, enable bool) bool
	EnableInterrupt(c Config, base Base, pin uint32, enable bool) bool
	Deinit() error
}

// Unsupported is the null-object platform: every capability is absent.
type Unsupported struct{}

var _ Capabilities = Unsupported{}

func (Unsupported) Init() error { return halerr.ErrUnsupported }
func (Unsupported) ConfigureInput(Config, Base, uint32, types.Pull, uint32) error {
	return halerr.ErrUnsupported
}
func (Unsupported) ConfigureAnalog(Config, Base, uint32, uint32, uint32) error {
	return halerr.ErrUnsupported
}
func (Unsupported) ConfigureOutput(Config, Base, uint32, uint32) error { return halerr.ErrUnsupported }
func (Unsupported) ConfigurePWM(Config, Base, uint32, uint32) error    { return halerr.ErrUnsupported }
func (Unsupported) ConfigurePassthrough(Config, Base, uint32, any) error {
	return halerr.ErrUnsupported
}
func (Unsupported) Read(Config, Base, uint32) (uint32, error)   { return 0, halerr.ErrUnsupported }
func (Unsupported) Write(Config, Base, uint32, uint32) bool     { return false }
func (Unsupported) SetPWM(Config, Base, uint32, uint32) bool    { return false }
func (Unsupported) EnableInterrupt(Config, Base, uint32, bool) bool { return false }
func (Unsupported) SetInterrupt(Config, Base, uint32, types.InterruptKind, InterruptHandler, bool) bool {
	return false
}
func (Unsupported) Deinit() error { return halerr.ErrUnsupported }

// ---------------- UART abstractions ----------------

// UARTPort is the hardware side of the byte-stream bridge. Readable and
// ReadByte are called from the RX interrupt handler and must not block.
type UARTPort interface {
	Configure(cfg types.UARTConfig) error
	Readable() bool
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
	SetRXInterrupt(h InterruptHandler, enable bool) error
	Close() error
}

// ---------------- Radio abstractions ----------------

// Radio is the Wi-Fi chip driver consumed by the connection state machine.
type Radio interface {
	Init() error
	EnableSTA() error
	DisableSTA() error
	// Connect blocks until association settles and returns the link code.
	Connect(ssid, password string, auth types.Auth) (types.LinkStatus, error)
	LinkStatus() types.LinkStatus
	Drop() error
}

// ---------------- Passthrough payloads ----------------

// I2CDevice is the usual Passthrough payload: a chip on a shared I2C bus.
// The platform configures the bus and, when it knows Driver, the chip.
type I2CDevice struct {
	Bus    string // "i2c0" | "i2c1"
	SDA    uint32
	SCL    uint32
	Hz     uint32
	Addr   uint16
	Driver string // "ds3231" | "sh1106"
}

// NoRadio is the Radio of a board without Wi-Fi support.
type NoRadio struct{}

var _ Radio = NoRadio{}

func (NoRadio) Init() error       { return halerr.ErrUnsupported }
func (NoRadio) EnableSTA() error  { return halerr.ErrUnsupported }
func (NoRadio) DisableSTA() error { return halerr.ErrUnsupported }
func (NoRadio) Connect(string, string, types.Auth) (types.LinkStatus, error) {
	return types.LinkFail, halerr.ErrUnsupported
}
func (NoRadio) LinkStatus() types.LinkStatus { return types.LinkDown }
func (NoRadio) Drop() error                  { return nil }
