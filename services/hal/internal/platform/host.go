//go:build !(rp2040 || rp2350)

package platform

import (
	"fmt"
	"sync"

	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
	"hhgarden-go/x/logx"

	"tinygo.org/x/drivers"
)

// SimPin is the simulated state of one GPIO.
type SimPin struct {
	Role    halcore.RoleKind
	Pull    types.Pull
	Level   uint32
	Duty    uint32
	IRQKind types.InterruptKind
	IRQOn   bool

	handler halcore.InterruptHandler
}

// Host implements halcore.Capabilities over simulated pins, ADC channels and
// I2C buses, so the full stack runs without hardware.
type Host struct {
	mu     sync.Mutex
	inited bool
	pins   map[uint32]*SimPin
	adc    map[uint32]uint32
	i2c    map[string]*HostI2C
	chips  map[string]halcore.I2CDevice // by peripheral name
	log    *logx.Logger
}

var _ halcore.Capabilities = (*Host)(nil)

func NewHost() *Host {
	return &Host{
		pins:  map[uint32]*SimPin{},
		adc:   map[uint32]uint32{4: 876}, // internal sensor, about 27 C
		i2c:   map[string]*HostI2C{},
		chips: map[string]halcore.I2CDevice{},
		log:   logx.New("HOST"),
	}
}

func (h *Host) Init() error {
	h.mu.Lock()
	h.inited = true
	h.mu.Unlock()
	return nil
}

func (h *Host) Deinit() error {
	h.mu.Lock()
	h.inited = false
	for _, p := range h.pins {
		p.IRQOn, p.handler = false, nil
	}
	h.mu.Unlock()
	return nil
}

func (h *Host) pin(n uint32) *SimPin {
	p := h.pins[n]
	if p == nil {
		p = &SimPin{}
		h.pins[n] = p
	}
	return p
}

func (h *Host) ConfigureInput(_ halcore.Config, _ halcore.Base, pin uint32, pull types.Pull, def uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pin(pin)
	p.Role, p.Pull, p.Level = halcore.KindInput, pull, def
	if pull == types.PullUp && def == 0 {
		p.Level = 1
	}
	return nil
}

func (h *Host) ConfigureAnalog(_ halcore.Config, _ halcore.Base, pin, channel, _ uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Channels 4 and up are internal sensors with no pin behind them.
	if channel < 4 {
		h.pin(pin).Role = halcore.KindAnalogInput
	}
	if _, ok := h.adc[channel]; !ok {
		h.adc[channel] = 0
	}
	return nil
}

func (h *Host) ConfigureOutput(_ halcore.Config, _ halcore.Base, pin, def uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pin(pin)
	p.Role, p.Level = halcore.KindOutput, def
	return nil
}

func (h *Host) ConfigurePWM(_ halcore.Config, _ halcore.Base, pin, def uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pin(pin)
	p.Role, p.Duty = halcore.KindPWMOutput, def
	return nil
}

// ConfigurePassthrough brings up the I2C bus named by an I2CDevice payload
// and attaches a simulated chip at its address.
func (h *Host) ConfigurePassthrough(c halcore.Config, _ halcore.Base, _ uint32, payload any) error {
	dev, ok := payload.(halcore.I2CDevice)
	if !ok {
		return fmt.Errorf("passthrough %s: payload %T: %w", c.Name, payload, halerr.ErrUnsupported)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	bus := h.i2c[dev.Bus]
	if bus == nil {
		bus = NewHostI2C()
		h.i2c[dev.Bus] = bus
	}
	bus.Attach(dev.Addr)
	h.chips[c.Name] = dev
	h.log.Debug("passthrough", logx.String("name", c.Name), logx.String("bus", dev.Bus), logx.String("driver", dev.Driver))
	return nil
}

func (h *Host) Read(c halcore.Config, _ halcore.Base, sel uint32) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := c.Role.(halcore.AnalogInput); ok {
		v, ok := h.adc[sel]
		if !ok {
			return 0, fmt.Errorf("adc channel %d: %w", sel, halerr.ErrNotFound)
		}
		return v, nil
	}
	p := h.pins[sel]
	if p == nil {
		return 0, fmt.Errorf("pin %d: %w", sel, halerr.ErrNotFound)
	}
	return p.Level, nil
}

func (h *Host) Write(_ halcore.Config, _ halcore.Base, pin, value uint32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pins[pin]
	if p == nil || p.Role != halcore.KindOutput {
		return false
	}
	if value != 0 {
		value = 1
	}
	p.Level = value
	return true
}

func (h *Host) SetPWM(_ halcore.Config, _ halcore.Base, pin, duty uint32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pins[pin]
	if p == nil || p.Role != halcore.KindPWMOutput || duty > uint32(types.PWMTop) {
		return false
	}
	p.Duty = duty
	return true
}

func (h *Host) SetInterrupt(_ halcore.Config, _ halcore.Base, pin uint32, kind types.InterruptKind, fn halcore.InterruptHandler, enable bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pins[pin]
	if p == nil || p.Role != halcore.KindInput {
		return false
	}
	p.IRQKind, p.handler, p.IRQOn = kind, fn, enable
	return true
}

func (h *Host) EnableInterrupt(_ halcore.Config, _ halcore.Base, pin uint32, enable bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pins[pin]
	if p == nil || p.handler == nil {
		return false
	}
	p.IRQOn = enable
	return true
}

// ---- Simulation controls ----

// Drive sets an input level from outside, firing its interrupt handler
// (outside the lock, as hardware would) when the change matches the kind.
func (h *Host) Drive(pin uint32, level uint32) {
	if level != 0 {
		level = 1
	}
	h.mu.Lock()
	p := h.pin(pin)
	old := p.Level
	p.Level = level
	fire := p.IRQOn && p.handler != nil && irqWanted(p.IRQKind, old, level)
	fn := p.handler
	h.mu.Unlock()
	if fire {
		fn()
	}
}

// Press drives an active-low button down and back up.
func (h *Host) Press(pin uint32) {
	h.Drive(pin, 0)
	h.Drive(pin, 1)
}

func (h *Host) SetADC(channel, v uint32) {
	h.mu.Lock()
	h.adc[channel] = v
	h.mu.Unlock()
}

// Pin returns a snapshot of a simulated pin.
func (h *Host) Pin(n uint32) (SimPin, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pins[n]
	if !ok {
		return SimPin{}, false
	}
	return *p, true
}

// I2C returns a bus brought up by a passthrough peripheral.
func (h *Host) I2C(id string) (drivers.I2C, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.i2c[id]
	if !ok {
		return nil, false
	}
	return b, true
}

// Chip returns the payload a passthrough peripheral was configured with.
func (h *Host) Chip(name string) (halcore.I2CDevice, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.chips[name]
	return d, ok
}

func irqWanted(kind types.InterruptKind, old, now uint32) bool {
	switch kind {
	case types.RisingEdge:
		return old == 0 && now == 1
	case types.FallingEdge:
		return old == 1 && now == 0
	case types.BothEdge:
		return old != now
	case types.HighLevel:
		return now == 1
	case types.LowLevel:
		return now == 0
	}
	return false
}
