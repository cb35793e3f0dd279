// Package hal assembles the controller: the peripheral registry, the button
// and UART bridges, the Wi-Fi state machine and the peripheral helpers, with
// their events fanned out onto the bus.
package hal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"hhgarden-go/bus"
	"hhgarden-go/services/hal/config"
	"hhgarden-go/services/hal/internal/devices/relays"
	"hhgarden-go/services/hal/internal/devices/rgbled"
	"hhgarden-go/services/hal/internal/devices/rtc"
	"hhgarden-go/services/hal/internal/gpioirq"
	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/services/hal/internal/platform"
	"hhgarden-go/services/hal/internal/platform/boards"
	"hhgarden-go/services/hal/internal/registry"
	"hhgarden-go/services/hal/internal/uartio"
	"hhgarden-go/services/hal/internal/wifi"
	"hhgarden-go/types"
	"hhgarden-go/x/logx"
	"hhgarden-go/x/timex"

	"go.uber.org/multierr"
)

// ErrWifiGaveUp ends a Wi-Fi run that exhausted its retries.
var ErrWifiGaveUp = wifi.ErrGaveUp

// Color is an 8-bit-per-channel LED colour.
type Color = rgbled.Color

// App owns every component built from one board and one platform.
type App struct {
	cfg   config.Config
	board boards.Board
	plat  platform.Bundle
	conn  *bus.Connection
	log   *logx.Logger

	gpio    *registry.Gpio
	buttons []*gpioirq.Button
	uart    *uartio.Bridge
	wifi    *wifi.FSM
	relays  *relays.Bank
	led     *rgbled.LED
	rtc     *rtc.Clock

	mu      sync.Mutex
	cancel  context.CancelFunc
	loopEnd chan struct{}
	started bool
}

// New validates the board and wires the components. Nothing touches the
// hardware until Start.
func New(cfg config.Config, board boards.Board, plat platform.Bundle, b *bus.Bus) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	cfgs, err := registry.FromTable(cfg.Capacity, board.Peripherals)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", board.Name, err)
	}
	a := &App{
		cfg:   cfg,
		board: board,
		plat:  plat,
		conn:  b.NewConnection("hal"),
		log:   logx.New("App"),
		gpio:  registry.New(plat.Caps, cfgs),
	}

	for _, name := range cfg.Buttons {
		p, ok := board.Find(name)
		if !ok || p.Role.Kind() != halcore.KindInput {
			a.log.Warn("button not on board", logx.String("name", name))
			continue
		}
		btn := gpioirq.NewButton(name, gpioirq.WithDebounce(cfg.Debounce))
		btn.SetOnClick(a.onClick(name))
		a.buttons = append(a.buttons, btn)
	}

	if plat.UART != nil {
		if a.uart, err = uartio.New(cfg.UART.Tag, plat.UART, cfg.UART.Queue); err != nil {
			return nil, err
		}
		a.uart.AddListener(a.onRX)
	}

	radio := plat.Radio
	if radio == nil {
		radio = halcore.NoRadio{}
	}
	a.wifi = wifi.New(radio, cfg.Credentials(), cfg.FSMOptions()...)
	a.wifi.SetOnStatusChange(a.onWifi)

	var bank []string
	for _, n := range boards.Relays {
		if p, ok := board.Find(n); ok && p.Role.Kind() == halcore.KindOutput {
			bank = append(bank, n)
		}
	}
	a.relays = relays.New(a.gpio, bank...)

	if hasPWM(board, boards.LedRed, boards.LedGreen, boards.LedBlue) {
		a.led = rgbled.New(a.gpio, boards.LedRed, boards.LedGreen, boards.LedBlue)
	}
	return a, nil
}

// Boot loads the board named by cfg and runs the app on the default
// platform for this build.
func Boot(ctx context.Context, cfg config.Config, b *bus.Bus) (*App, error) {
	board, err := LoadBoard(cfg)
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, board, platform.Default(), b)
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	return a, nil
}

// LoadBoard resolves cfg.BoardFile, falling back to the built-in table
// named cfg.Board.
func LoadBoard(cfg config.Config) (boards.Board, error) {
	if cfg.BoardFile != "" {
		data, err := os.ReadFile(cfg.BoardFile)
		if err != nil {
			return boards.Board{}, err
		}
		return boards.Parse(data)
	}
	b, ok := boards.Builtin(cfg.Board)
	if !ok {
		return boards.Board{}, fmt.Errorf("unknown board %q", cfg.Board)
	}
	return b, nil
}

// Start initialises the registry and every component, then serves control
// requests until ctx ends or Close is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return halerr.ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)

	if err := a.gpio.Init(); err != nil {
		cancel()
		a.publishState("error", "init_failed", err)
		return err
	}
	if err := a.relays.AllOff(); err != nil {
		a.log.Warn("relays off failed", logx.Err(err))
	}

	for _, btn := range a.buttons {
		if err := btn.Init(a.gpio); err != nil {
			cancel()
			return err
		}
		if err := btn.Start(ctx); err != nil {
			cancel()
			return err
		}
	}

	if a.uart != nil {
		ucfg := a.board.UART
		if a.cfg.UART.Baud != 0 {
			ucfg.Baud = a.cfg.UART.Baud
		}
		if err := a.uart.Init(ucfg); err != nil {
			cancel()
			return err
		}
		if err := a.uart.Start(ctx); err != nil {
			cancel()
			return err
		}
	}

	a.rtc = a.startRTC()

	if a.cfg.Wifi.Enabled {
		if err := a.wifi.Start(ctx); err != nil {
			a.log.Warn("wifi not started", logx.Err(err))
		}
	}

	a.cancel = cancel
	a.loopEnd = make(chan struct{})
	a.started = true
	sub := a.conn.Subscribe(bus.T("hal", "+", "+", "control", "+"))
	go a.loop(ctx, sub, a.loopEnd)
	a.publishState("ready", "running", nil)
	return nil
}

func (a *App) startRTC() *rtc.Clock {
	p, ok := a.board.Find(boards.Rtc)
	if !ok || a.plat.Buses == nil {
		return nil
	}
	pt, ok := p.Role.(halcore.Passthrough)
	if !ok {
		return nil
	}
	chip, ok := pt.Payload.(halcore.I2CDevice)
	if !ok {
		return nil
	}
	c, err := rtc.New(a.plat.Buses, chip)
	if err == nil {
		err = c.Init()
	}
	if err != nil {
		a.log.Warn("rtc unavailable", logx.Err(err))
		return nil
	}
	return c
}

// Close stops the workers and releases the hardware. Every teardown step
// runs even if an earlier one fails.
func (a *App) Close() error {
	a.mu.Lock()
	cancel, loopEnd, started := a.cancel, a.loopEnd, a.started
	a.started = false
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-loopEnd
		for _, btn := range a.buttons {
			<-btn.Done()
		}
		if a.uart != nil {
			<-a.uart.Done()
		}
	}
	<-a.wifi.Done()

	var err error
	for _, btn := range a.buttons {
		if e := btn.Detach(a.gpio); e != nil && !errors.Is(e, halerr.ErrNoInterrupt) {
			err = multierr.Append(err, e)
		}
	}
	if a.uart != nil {
		err = multierr.Append(err, a.uart.Close())
	}
	if a.plat.Radio != nil {
		err = multierr.Append(err, a.plat.Radio.Drop())
	}
	err = multierr.Append(err, a.gpio.Deinit())
	a.publishState("stopped", "closed", err)
	a.conn.Disconnect()
	return err
}

func (a *App) Gpio() *registry.Gpio     { return a.gpio }
func (a *App) Relays() *relays.Bank     { return a.relays }
func (a *App) Wifi() *wifi.FSM          { return a.wifi }
func (a *App) UART() *uartio.Bridge     { return a.uart }
func (a *App) Board() boards.Board      { return a.board }
func (a *App) LED() (*rgbled.LED, bool) { return a.led, a.led != nil }
func (a *App) RTC() (*rtc.Clock, bool)  { return a.rtc, a.rtc != nil }

// Button returns the bridge attached to name.
func (a *App) Button(name string) (*gpioirq.Button, bool) {
	for _, b := range a.buttons {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// ---- event fan-out ----

func (a *App) onClick(name string) gpioirq.ClickFunc {
	topic := TopicButtonClick(name)
	return func(st types.ButtonState) {
		a.conn.Publish(a.conn.NewMessage(topic,
			map[string]any{"state": st.String(), "ts_ms": timex.NowMs()}, false))
	}
}

func (a *App) onRX(tag string, data []byte) {
	a.conn.Publish(a.conn.NewMessage(TopicUARTRX(tag), data, false))
}

func (a *App) onWifi(from, to types.WifiStatus) {
	a.conn.Publish(a.conn.NewMessage(TopicWifiStatus,
		map[string]any{"status": to.String(), "previous": from.String(), "ts_ms": timex.NowMs()}, true))
}

func (a *App) publishState(level, status string, err error) {
	payload := map[string]any{"level": level, "status": status, "ts_ms": timex.NowMs()}
	if err != nil {
		payload["error"] = err.Error()
	}
	a.conn.Publish(a.conn.NewMessage(TopicState, payload, true))
}

func hasPWM(b boards.Board, names ...string) bool {
	for _, n := range names {
		p, ok := b.Find(n)
		if !ok || p.Role.Kind() != halcore.KindPWMOutput {
			return false
		}
	}
	return true
}
