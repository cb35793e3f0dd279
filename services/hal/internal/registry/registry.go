// services/hal/internal/registry/registry.go
package registry

import (
	"errors"
	"fmt"
	"sync"

	"hhgarden-go/errcode"
	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
	"hhgarden-go/x/logx"
)

// Gpio is the peripheral registry: a Configs table plus the platform
// capabilities that act on it. Each method locks for the duration of one call;
// use Do to make a sequence of calls atomic.
type Gpio struct {
	mu   sync.Mutex
	cfgs *Configs
	caps halcore.Capabilities
	log  *logx.Logger
}

// New wires a registry. A nil caps means no platform support at all.
func New(caps halcore.Capabilities, cfgs *Configs) *Gpio {
	if caps == nil {
		caps = halcore.Unsupported{}
	}
	if cfgs == nil {
		panic("registry: nil configs")
	}
	return &Gpio{cfgs: cfgs, caps: caps, log: logx.New("GPIO")}
}

// Tx exposes the registry operations to a caller already holding the lock.
type Tx struct{ g *Gpio }

// Do runs fn with the registry locked. fn must not call methods on the
// Gpio itself, only on tx.
func (g *Gpio) Do(fn func(tx Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(Tx{g})
}

// ---- Lifecycle ----

// Init brings up the platform and then every peripheral in insertion order.
// A peripheral whose capability is missing is logged and skipped.
func (g *Gpio) Init() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Info("init")
	if err := g.caps.Init(); err != nil && !errors.Is(err, halerr.ErrUnsupported) {
		return fmt.Errorf("platform init: %w", err)
	}

	for i := 0; i < g.cfgs.next; i++ {
		cfg := g.cfgs.slots[i]
		if cfg == nil {
			return fmt.Errorf("slot %d: %w", i, halerr.ErrNotFound)
		}
		if err := g.initOne(*cfg); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gpio) initOne(cfg halcore.Config) error {
	var err error
	switch r := cfg.Role.(type) {
	case halcore.Input:
		err = g.caps.ConfigureInput(cfg, r.Base, r.Pin, r.Pull, r.Default)
	case halcore.AnalogInput:
		err = g.caps.ConfigureAnalog(cfg, r.Base, r.Pin, r.Channel, r.Rank)
	case halcore.Output:
		err = g.caps.ConfigureOutput(cfg, r.Base, r.Pin, r.Default)
	case halcore.PWMOutput:
		err = g.caps.ConfigurePWM(cfg, r.Base, r.Pin, r.Default)
	case halcore.Passthrough:
		err = g.caps.ConfigurePassthrough(cfg, r.Base, r.Pin, r.Payload)
	default:
		g.log.Info("not initialized", logx.String("name", cfg.Name))
		return nil
	}
	kind := cfg.Role.Kind().String()
	switch {
	case err == nil:
		g.log.Info("configured", logx.String("name", cfg.Name), logx.String("role", kind))
		return nil
	case errors.Is(err, halerr.ErrUnsupported):
		g.log.Warn("capability not provided", logx.String("name", cfg.Name), logx.String("role", kind))
		return nil
	default:
		return fmt.Errorf("init %s: %w", cfg.Name, err)
	}
}

// Deinit releases the platform. A missing capability is not an error.
func (g *Gpio) Deinit() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.caps.Deinit(); err != nil {
		if errors.Is(err, halerr.ErrUnsupported) {
			g.log.Warn("deinit capability not provided")
			return nil
		}
		return fmt.Errorf("platform deinit: %w", err)
	}
	return nil
}

// ---- Locked single-call surface ----

func (g *Gpio) Push(cfg halcore.Config) error {
	return g.Do(func(tx Tx) error { return tx.Push(cfg) })
}

func (g *Gpio) Config(name string) (cfg halcore.Config, ok bool) {
	_ = g.Do(func(tx Tx) error { cfg, ok = tx.Config(name); return nil })
	return cfg, ok
}

func (g *Gpio) Names() (names []string) {
	_ = g.Do(func(tx Tx) error { names = g.cfgs.Names(); return nil })
	return names
}

func (g *Gpio) Write(name string, value uint32) error {
	return g.Do(func(tx Tx) error { return tx.Write(name, value) })
}

func (g *Gpio) Read(name string) (v uint32, err error) {
	err = g.Do(func(tx Tx) error { v, err = tx.Read(name); return err })
	return v, err
}

func (g *Gpio) SetPWM(name string, duty uint16) error {
	return g.Do(func(tx Tx) error { return tx.SetPWM(name, duty) })
}

func (g *Gpio) SetInterrupt(name string, kind types.InterruptKind, enable bool, h halcore.InterruptHandler) error {
	return g.Do(func(tx Tx) error { return tx.SetInterrupt(name, kind, enable, h) })
}

func (g *Gpio) EnableInterrupt(name string, enable bool) error {
	return g.Do(func(tx Tx) error { return tx.EnableInterrupt(name, enable) })
}

// ---- Tx operations (lock held) ----

func (tx Tx) Push(cfg halcore.Config) error { return tx.g.cfgs.Push(cfg) }

func (tx Tx) Config(name string) (halcore.Config, bool) { return tx.g.cfgs.Get(name) }

// Write drives an Output.
func (tx Tx) Write(name string, value uint32) error {
	cfg, _ := tx.g.cfgs.find(name)
	if cfg == nil {
		return notFound("write", name)
	}
	r, ok := cfg.Role.(halcore.Output)
	if !ok {
		return invalidType("write", name, cfg.Role)
	}
	if !tx.g.caps.Write(*cfg, r.Base, r.Pin, value) {
		return &errcode.E{C: errcode.Rejected, Op: "gpio.write", Msg: name, Err: halerr.ErrRejected}
	}
	return nil
}

// Read samples an Input (by pin) or an AnalogInput (by channel).
func (tx Tx) Read(name string) (uint32, error) {
	cfg, _ := tx.g.cfgs.find(name)
	if cfg == nil {
		return 0, notFound("read", name)
	}
	var (
		base halcore.Base
		sel  uint32
	)
	switch r := cfg.Role.(type) {
	case halcore.Input:
		base, sel = r.Base, r.Pin
	case halcore.AnalogInput:
		base, sel = r.Base, r.Channel
	default:
		return 0, invalidType("read", name, cfg.Role)
	}
	v, err := tx.g.caps.Read(*cfg, base, sel)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, halerr.ErrUnsupported):
		return 0, &errcode.E{C: errcode.Unsupported, Op: "gpio.read", Msg: name, Err: err}
	default:
		return 0, &errcode.E{C: errcode.Unhandled, Op: "gpio.read", Msg: name, Err: err}
	}
}

// SetPWM sets the duty of a PWMOutput.
func (tx Tx) SetPWM(name string, duty uint16) error {
	cfg, _ := tx.g.cfgs.find(name)
	if cfg == nil {
		return notFound("set_pwm", name)
	}
	r, ok := cfg.Role.(halcore.PWMOutput)
	if !ok {
		return invalidType("set_pwm", name, cfg.Role)
	}
	if !tx.g.caps.SetPWM(*cfg, r.Base, r.Pin, uint32(duty)) {
		return &errcode.E{C: errcode.Rejected, Op: "gpio.set_pwm", Msg: name, Err: halerr.ErrRejected}
	}
	return nil
}

// SetInterrupt attaches h to an Input and records the attachment so that
// EnableInterrupt can later toggle it without restating the kind.
func (tx Tx) SetInterrupt(name string, kind types.InterruptKind, enable bool, h halcore.InterruptHandler) error {
	cfg, _ := tx.g.cfgs.find(name)
	if cfg == nil {
		return notFound("set_interrupt", name)
	}
	r, ok := cfg.Role.(halcore.Input)
	if !ok {
		return invalidType("set_interrupt", name, cfg.Role)
	}
	if h == nil {
		return &errcode.E{C: errcode.InvalidType, Op: "gpio.set_interrupt", Msg: "nil handler", Err: halerr.ErrInvalidType}
	}
	tx.g.log.Info("interrupt", logx.String("name", name), logx.String("kind", kind.String()), logx.Bool("enabled", enable))
	if !tx.g.caps.SetInterrupt(*cfg, r.Base, r.Pin, kind, h, enable) {
		return &errcode.E{C: errcode.Rejected, Op: "gpio.set_interrupt", Msg: name, Err: halerr.ErrRejected}
	}
	cfg.Interrupt = &halcore.InterruptConfig{Kind: kind, Enabled: enable, Handler: h}
	return nil
}

// EnableInterrupt toggles a previously attached interrupt.
func (tx Tx) EnableInterrupt(name string, enable bool) error {
	cfg, _ := tx.g.cfgs.find(name)
	if cfg == nil {
		return notFound("enable_interrupt", name)
	}
	r, ok := cfg.Role.(halcore.Input)
	if !ok {
		return invalidType("enable_interrupt", name, cfg.Role)
	}
	if cfg.Interrupt == nil {
		return &errcode.E{C: errcode.NoInterrupt, Op: "gpio.enable_interrupt", Msg: name, Err: halerr.ErrNoInterrupt}
	}
	tx.g.log.Info("interrupt", logx.String("name", name), logx.Bool("enabled", enable))
	if !tx.g.caps.EnableInterrupt(*cfg, r.Base, r.Pin, enable) {
		return &errcode.E{C: errcode.Rejected, Op: "gpio.enable_interrupt", Msg: name, Err: halerr.ErrRejected}
	}
	cfg.Interrupt.Enabled = enable
	return nil
}

func notFound(op, name string) error {
	return &errcode.E{C: errcode.NotFound, Op: "gpio." + op, Msg: name, Err: halerr.ErrNotFound}
}

func invalidType(op, name string, r halcore.Role) error {
	return &errcode.E{C: errcode.InvalidType, Op: "gpio." + op, Msg: name + " is " + r.Kind().String(), Err: halerr.ErrInvalidType}
}
