//go:build rp2040 || rp2350

package platform

import (
	"fmt"
	"machine"
	"sync"

	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
	"hhgarden-go/x/logx"
	"hhgarden-go/x/mathx"
	"hhgarden-go/x/timex"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/sh1106"
)

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Top() uint32
	Set(channel uint8, value uint32)
}

func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// pwmHz keeps the status LEDs flicker-free.
const pwmHz = 1000

type irqState struct {
	kind    types.InterruptKind
	handler halcore.InterruptHandler
}

// RP2 implements halcore.Capabilities on the Pico.
type RP2 struct {
	mu   sync.Mutex
	irq  map[uint32]*irqState
	i2c  map[string]*machine.I2C
	oled *sh1106.Device
	log  *logx.Logger
}

var _ halcore.Capabilities = (*RP2)(nil)

func NewRP2() *RP2 {
	return &RP2{
		irq: map[uint32]*irqState{},
		i2c: map[string]*machine.I2C{},
		log: logx.New("RP2"),
	}
}

func (p *RP2) Init() error {
	machine.InitADC()
	return nil
}

func (p *RP2) Deinit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for n := range p.irq {
		_ = machine.Pin(n).SetInterrupt(0, nil)
	}
	clear(p.irq)
	return nil
}

func (p *RP2) ConfigureInput(_ halcore.Config, _ halcore.Base, pin uint32, pull types.Pull, _ uint32) error {
	mode := machine.PinInput
	switch pull {
	case types.PullUp:
		mode = machine.PinInputPullup
	case types.PullDown:
		mode = machine.PinInputPulldown
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (p *RP2) ConfigureAnalog(_ halcore.Config, _ halcore.Base, pin, channel, _ uint32) error {
	if channel >= 4 {
		return nil // internal temperature sensor, no pin
	}
	machine.ADC{Pin: machine.Pin(pin)}.Configure(machine.ADCConfig{})
	return nil
}

func (p *RP2) ConfigureOutput(_ halcore.Config, _ halcore.Base, pin, def uint32) error {
	mp := machine.Pin(pin)
	mp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	mp.Set(def != 0)
	return nil
}

func (p *RP2) ConfigurePWM(_ halcore.Config, _ halcore.Base, pin, def uint32) error {
	slice, err := machine.PWMPeripheral(machine.Pin(pin))
	if err != nil {
		return halerr.ErrUnsupported
	}
	ctrl := pwmGroupBySlice(slice)
	if err := ctrl.Configure(machine.PWMConfig{Period: timex.PeriodFromHz(pwmHz)}); err != nil {
		return err
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinPWM})
	p.setDuty(ctrl, pin, def)
	return nil
}

// setDuty scales a duty in [0..PWMTop] to the slice's hardware top.
func (p *RP2) setDuty(ctrl pwmCtrl, pin, duty uint32) {
	duty = mathx.Min(duty, uint32(types.PWMTop))
	ctrl.Set(uint8(pin&1), duty*ctrl.Top()/uint32(types.PWMTop))
}

func (p *RP2) ConfigurePassthrough(c halcore.Config, _ halcore.Base, _ uint32, payload any) error {
	dev, ok := payload.(halcore.I2CDevice)
	if !ok {
		return fmt.Errorf("passthrough %s: payload %T: %w", c.Name, payload, halerr.ErrUnsupported)
	}
	bus, err := p.bus(dev)
	if err != nil {
		return err
	}
	switch dev.Driver {
	case "sh1106":
		d := sh1106.NewI2C(bus)
		d.Configure(sh1106.Config{Address: dev.Addr})
		d.ClearDisplay()
		p.mu.Lock()
		p.oled = &d
		p.mu.Unlock()
	case "ds3231":
		// Driven by devices/rtc once the bus is up.
	default:
		p.log.Warn("unknown passthrough driver", logx.String("name", c.Name), logx.String("driver", dev.Driver))
	}
	return nil
}

func (p *RP2) bus(dev halcore.I2CDevice) (*machine.I2C, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b := p.i2c[dev.Bus]; b != nil {
		return b, nil
	}
	var b *machine.I2C
	switch dev.Bus {
	case "i2c0":
		b = machine.I2C0
	case "i2c1":
		b = machine.I2C1
	default:
		return nil, fmt.Errorf("i2c bus %q: %w", dev.Bus, halerr.ErrNotFound)
	}
	if err := b.Configure(machine.I2CConfig{
		Frequency: dev.Hz,
		SDA:       machine.Pin(dev.SDA),
		SCL:       machine.Pin(dev.SCL),
	}); err != nil {
		return nil, err
	}
	p.i2c[dev.Bus] = b
	return b, nil
}

// I2C returns a bus brought up by a passthrough peripheral.
func (p *RP2) I2C(id string) (drivers.I2C, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.i2c[id]
	if !ok {
		return nil, false
	}
	return b, true
}

// Display returns the SH1106 if one was configured.
func (p *RP2) Display() (*sh1106.Device, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.oled, p.oled != nil
}

// Read returns a pin level, a 16-bit ADC sample, or for channel 4 the die
// temperature in milli-Celsius.
func (p *RP2) Read(c halcore.Config, _ halcore.Base, sel uint32) (uint32, error) {
	if r, ok := c.Role.(halcore.AnalogInput); ok {
		if sel >= 4 {
			return uint32(machine.ReadTemperature()), nil
		}
		return uint32(machine.ADC{Pin: machine.Pin(r.Pin)}.Get()), nil
	}
	if machine.Pin(sel).Get() {
		return 1, nil
	}
	return 0, nil
}

func (p *RP2) Write(_ halcore.Config, _ halcore.Base, pin, value uint32) bool {
	machine.Pin(pin).Set(value != 0)
	return true
}

func (p *RP2) SetPWM(_ halcore.Config, _ halcore.Base, pin, duty uint32) bool {
	slice, err := machine.PWMPeripheral(machine.Pin(pin))
	if err != nil {
		return false
	}
	p.setDuty(pwmGroupBySlice(slice), pin, duty)
	return true
}

func toPinChange(k types.InterruptKind) (machine.PinChange, bool) {
	switch k {
	case types.RisingEdge:
		return machine.PinRising, true
	case types.FallingEdge:
		return machine.PinFalling, true
	case types.BothEdge:
		return machine.PinToggle, true
	}
	return 0, false // level interrupts are not exposed by machine
}

func (p *RP2) SetInterrupt(_ halcore.Config, _ halcore.Base, pin uint32, kind types.InterruptKind, h halcore.InterruptHandler, enable bool) bool {
	change, ok := toPinChange(kind)
	if !ok {
		return false
	}
	p.mu.Lock()
	p.irq[pin] = &irqState{kind: kind, handler: h}
	p.mu.Unlock()
	if !enable {
		return machine.Pin(pin).SetInterrupt(0, nil) == nil
	}
	return machine.Pin(pin).SetInterrupt(change, func(machine.Pin) { h() }) == nil
}

func (p *RP2) EnableInterrupt(_ halcore.Config, _ halcore.Base, pin uint32, enable bool) bool {
	p.mu.Lock()
	st := p.irq[pin]
	p.mu.Unlock()
	if st == nil {
		return false
	}
	if !enable {
		return machine.Pin(pin).SetInterrupt(0, nil) == nil
	}
	change, _ := toPinChange(st.kind)
	h := st.handler
	return machine.Pin(pin).SetInterrupt(change, func(machine.Pin) { h() }) == nil
}
