package gpioirq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"hhgarden-go/errcode"
	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
	"hhgarden-go/x/logx"
	"hhgarden-go/x/timex"
)

const DefaultDebounce = 50 * time.Millisecond

// Event bits the ISR raises. They OR together until the worker consumes them.
const (
	bitPressed  uint32 = 1 << 0
	bitReleased uint32 = 1 << 1
)

// InterruptAttacher is the registry surface the button needs.
type InterruptAttacher interface {
	SetInterrupt(name string, kind types.InterruptKind, enable bool, h halcore.InterruptHandler) error
	EnableInterrupt(name string, enable bool) error
}

// ClickFunc receives accepted transitions on the worker goroutine.
type ClickFunc func(state types.ButtonState)

// Button bridges a both-edge input interrupt into debounced callbacks.
// The ISR side only touches state, pending and wake.
type Button struct {
	name     string
	debounce time.Duration
	clock    timex.Clock
	log      *logx.Logger

	state   atomic.Uint32 // types.ButtonState, written only by the ISR
	pending atomic.Uint32 // unconsumed event bits
	wake    chan struct{}

	mu      sync.Mutex
	onClick ClickFunc

	running atomic.Bool
	done    chan struct{}
}

type Option func(*Button)

func WithDebounce(d time.Duration) Option {
	return func(b *Button) {
		if d >= 0 {
			b.debounce = d
		}
	}
}

func WithClock(c timex.Clock) Option {
	return func(b *Button) {
		if c != nil {
			b.clock = c
		}
	}
}

func NewButton(name string, opts ...Option) *Button {
	b := &Button{
		name:     name,
		debounce: DefaultDebounce,
		clock:    timex.System,
		log:      logx.New("Button"),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Button) Name() string { return b.name }

// SetOnClick replaces the click callback. A nil callback discards events.
func (b *Button) SetOnClick(fn ClickFunc) {
	b.mu.Lock()
	b.onClick = fn
	b.mu.Unlock()
}

// State returns the last state the ISR recorded.
func (b *Button) State() types.ButtonState {
	return types.ButtonState(b.state.Load())
}

// Init attaches the both-edge interrupt to the named input.
func (b *Button) Init(gpio InterruptAttacher) error {
	b.log.Info("init", logx.String("name", b.name))
	if err := gpio.SetInterrupt(b.name, types.BothEdge, true, b.ISR); err != nil {
		b.log.Error("set interrupt failed", logx.String("name", b.name), logx.Err(err))
		if errors.Is(err, halerr.ErrRejected) {
			return &errcode.E{C: errcode.NotFound, Op: "button.init", Msg: b.name, Err: err}
		}
		return err
	}
	return nil
}

// Detach disables the interrupt; the worker keeps running.
func (b *Button) Detach(gpio InterruptAttacher) error {
	return gpio.EnableInterrupt(b.name, false)
}

// ISR flips the state cell and signals the worker. It runs in interrupt
// context: no blocking, no allocation, no locks.
func (b *Button) ISR() {
	var bit uint32
	if types.ButtonState(b.state.Load()) == types.ButtonPressed {
		b.state.Store(uint32(types.ButtonReleased))
		bit = bitReleased
	} else {
		b.state.Store(uint32(types.ButtonPressed))
		bit = bitPressed
	}
	b.pending.Or(bit)
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Start runs the worker until ctx is cancelled.
func (b *Button) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return halerr.ErrAlreadyRunning
	}
	go b.run(ctx)
	return nil
}

// Done is closed when the worker exits.
func (b *Button) Done() <-chan struct{} { return b.done }

func (b *Button) run(ctx context.Context) {
	defer close(b.done)
	var (
		last     time.Time
		accepted bool
	)
	for {
		select {
		case <-ctx.Done():
			b.log.Debug("stopped", logx.String("name", b.name))
			return
		case <-b.wake:
		}
		bits := b.pending.Swap(0)

		b.mu.Lock()
		fn := b.onClick
		b.mu.Unlock()
		if fn == nil {
			continue
		}

		now := b.clock.Now()
		// An event exactly one window after the last accepted one counts.
		if accepted && now.Sub(last) < b.debounce {
			continue
		}

		var st types.ButtonState
		switch {
		case bits&bitPressed != 0:
			st = types.ButtonPressed
		case bits&bitReleased != 0:
			st = types.ButtonReleased
		default:
			continue
		}
		fn(st)
		last, accepted = now, true
	}
}
