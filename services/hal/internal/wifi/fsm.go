package wifi

import (
	"context"
	"errors"
	"fmt"
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

const (
	DefaultStep       = 100 * time.Millisecond
	DefaultBackoff    = 500 * time.Millisecond
	DefaultMaxRetries = 5

	MaxSSIDLen     = 32
	MaxPasswordLen = 32
)

// ErrGaveUp ends a run that exhausted its retries.
var ErrGaveUp = errors.New("wifi: retries exhausted")

// Credentials select the network to join.
type Credentials struct {
	SSID     string
	Password string
	Auth     types.Auth
}

func (c Credentials) Validate() error {
	switch {
	case c.SSID == "" || len(c.SSID) > MaxSSIDLen:
		return &errcode.E{C: errcode.InvalidName, Op: "wifi.credentials", Msg: "ssid", Err: halerr.ErrInvalidName}
	case len(c.Password) > MaxPasswordLen:
		return &errcode.E{C: errcode.InvalidName, Op: "wifi.credentials", Msg: "password", Err: halerr.ErrInvalidName}
	}
	return nil
}

// Observer is called on the state-machine goroutine for every edge. It
// must not block.
type Observer func(from, to types.WifiStatus)

// FSM walks the radio through one connect/disconnect cycle per run:
//
//	Disabled -> Enabling -> Enabled -> Connecting -> Connected -> Disconnecting -> Disabled
//
// A radio fault moves it to Error, which retries the failed state and after
// MaxRetries folds back to Disabled.
type FSM struct {
	radio halcore.Radio
	creds Credentials
	log   *logx.Logger

	clock      timex.Clock
	step       time.Duration
	backoff    time.Duration
	hold       time.Duration
	maxRetries int

	// status packs current (low byte) and previous (second byte) so both
	// read consistently. Only the run goroutine writes it.
	status atomic.Uint32

	mu       sync.Mutex
	observer Observer
	running  bool
	done     chan struct{}
	lastErr  error

	initialized bool // run goroutine only
}

type Option func(*FSM)

func WithClock(c timex.Clock) Option {
	return func(f *FSM) {
		if c != nil {
			f.clock = c
		}
	}
}

func WithStep(d time.Duration) Option    { return func(f *FSM) { f.step = d } }
func WithBackoff(d time.Duration) Option { return func(f *FSM) { f.backoff = d } }

// WithHold keeps the link up for d before disconnecting.
func WithHold(d time.Duration) Option { return func(f *FSM) { f.hold = d } }

func WithMaxRetries(n int) Option {
	return func(f *FSM) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

func New(radio halcore.Radio, creds Credentials, opts ...Option) *FSM {
	f := &FSM{
		radio:      radio,
		creds:      creds,
		log:        logx.New("WIFI"),
		clock:      timex.System,
		step:       DefaultStep,
		backoff:    DefaultBackoff,
		maxRetries: DefaultMaxRetries,
		done:       make(chan struct{}),
	}
	close(f.done)
	for _, o := range opts {
		o(f)
	}
	return f
}

// SetOnStatusChange installs the observer for subsequent edges.
func (f *FSM) SetOnStatusChange(o Observer) {
	f.mu.Lock()
	f.observer = o
	f.mu.Unlock()
}

// Status returns the current and previous state.
func (f *FSM) Status() (current, previous types.WifiStatus) {
	v := f.status.Load()
	return types.WifiStatus(v), types.WifiStatus(v >> 8)
}

// Start spawns one run. A finished run may be started again.
func (f *FSM) Start(ctx context.Context) error {
	if err := f.creds.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return halerr.ErrAlreadyRunning
	}
	f.running = true
	f.done = make(chan struct{})
	f.lastErr = nil
	done := f.done
	go func() {
		err := f.run(ctx)
		f.mu.Lock()
		f.running, f.lastErr = false, err
		f.mu.Unlock()
		close(done)
	}()
	return nil
}

// Run performs one cycle on the calling goroutine.
func (f *FSM) Run(ctx context.Context) error {
	if err := f.Start(ctx); err != nil {
		return err
	}
	<-f.Done()
	return f.Err()
}

// Done is closed when the current run ends.
func (f *FSM) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Err reports how the last finished run ended: nil after a full cycle,
// ErrGaveUp after exhausting retries, or the context error.
func (f *FSM) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *FSM) transition(to types.WifiStatus) {
	from, _ := f.Status()
	f.status.Store(uint32(to) | uint32(from)<<8)
	f.log.Debug("status", logx.String("old", from.String()), logx.String("new", to.String()))

	f.mu.Lock()
	o := f.observer
	f.mu.Unlock()
	if o != nil {
		o(from, to)
	}
}

func (f *FSM) run(ctx context.Context) error {
	f.log.Info("start", logx.String("ssid", f.creds.SSID), logx.String("auth", f.creds.Auth.String()))
	var (
		failed  types.WifiStatus
		retries int
	)
	for {
		cur, _ := f.Status()
		var next types.WifiStatus
		switch cur {
		case types.WifiDisabled:
			if !f.initialized {
				if err := f.radio.Init(); err != nil {
					f.log.Error("radio init failed", logx.Err(err))
					failed, next = cur, types.WifiError
					break
				}
				f.initialized = true
			}
			next = types.WifiEnabling

		case types.WifiEnabling:
			if err := f.radio.EnableSTA(); err != nil {
				f.log.Error("enable sta failed", logx.Err(err))
				failed, next = cur, types.WifiError
				break
			}
			next = types.WifiEnabled

		case types.WifiEnabled:
			next = types.WifiConnecting

		case types.WifiConnecting:
			if err := f.connect(); err != nil {
				f.log.Error("connect failed", logx.Err(err), logx.Int("attempt", retries))
				failed, next = cur, types.WifiError
				break
			}
			next = types.WifiConnected

		case types.WifiConnected:
			if f.hold > 0 && !f.clock.Sleep(ctx, f.hold) {
				return f.stopped(ctx)
			}
			if st := f.radio.LinkStatus(); st != types.LinkUp {
				f.log.Warn("link lost", logx.String("link", st.String()))
				failed, next = cur, types.WifiError
				break
			}
			next = types.WifiDisconnecting

		case types.WifiDisconnecting:
			if err := f.radio.DisableSTA(); err != nil {
				f.log.Warn("disable sta failed", logx.Err(err))
			}
			f.transition(types.WifiDisabled)
			f.log.Info("cycle complete")
			return nil

		case types.WifiError:
			if retries < f.maxRetries {
				retries++
				f.log.Debug("retry", logx.Int("n", retries), logx.Int("max", f.maxRetries))
				if !f.clock.Sleep(ctx, f.backoff) {
					return f.stopped(ctx)
				}
				next = failed
				break
			}
			f.log.Warn("giving up, dropping radio")
			if err := f.radio.Drop(); err != nil {
				f.log.Warn("drop failed", logx.Err(err))
			}
			f.initialized = false
			f.transition(types.WifiDisabled)
			return ErrGaveUp
		}

		if next != types.WifiError && cur != types.WifiError {
			retries = 0
		}
		f.transition(next)
		if !f.clock.Sleep(ctx, f.step) {
			return f.stopped(ctx)
		}
	}
}

func (f *FSM) connect() error {
	st, err := f.radio.Connect(f.creds.SSID, f.creds.Password, f.creds.Auth)
	switch {
	case err != nil:
		return errcode.WithCode("wifi.connect", int32(st), err)
	case st.Failed():
		return errcode.WithCode("wifi.connect", int32(st), fmt.Errorf("link %s", st))
	}
	f.log.Info("associated", logx.String("link", st.String()))
	return nil
}

func (f *FSM) stopped(ctx context.Context) error {
	cur, _ := f.Status()
	f.log.Info("stopped", logx.String("status", cur.String()))
	return ctx.Err()
}
