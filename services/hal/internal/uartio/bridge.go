package uartio

import (
	"context"
	"sync"
	"sync/atomic"

	"hhgarden-go/errcode"
	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
	"hhgarden-go/x/logx"
	"hhgarden-go/x/shmring"
)

// DefaultQueue is sized for the worst-case RX burst between two wake-ups.
const DefaultQueue = 64

// Listener receives one batch of received bytes. data is owned by the
// listener once delivered.
type Listener func(source string, data []byte)

// Bridge moves bytes from the RX interrupt into listener callbacks. The ISR
// pushes into an SPSC ring and drops on overflow.
type Bridge struct {
	tag  string
	port halcore.UARTPort
	ring *shmring.Ring
	log  *logx.Logger

	drops atomic.Uint32

	mu        sync.Mutex
	listeners []Listener

	running atomic.Bool
	done    chan struct{}
}

// New allocates the bridge queue. A queue size that is not a power of two
// >= 2 fails with out_of_memory, which is fatal to the bridge.
func New(tag string, port halcore.UARTPort, queue int) (*Bridge, error) {
	if !shmring.ValidSize(queue) {
		return nil, &errcode.E{C: errcode.OutOfMemory, Op: "uart.new", Msg: "queue size", Err: halerr.ErrOutOfMemory}
	}
	return &Bridge{
		tag:  tag,
		port: port,
		ring: shmring.New(queue),
		log:  logx.New("Uart"),
		done: make(chan struct{}),
	}, nil
}

func (b *Bridge) Tag() string { return b.tag }

// Validate checks a port configuration against what the hardware supports.
func Validate(cfg types.UARTConfig) error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidType, Op: "uart.config", Msg: msg, Err: halerr.ErrInvalidType}
	}
	switch {
	case cfg.Baud == 0:
		return bad("baud")
	case cfg.DataBits < 5 || cfg.DataBits > 9:
		return bad("data bits")
	case cfg.StopBits != types.StopBitsOne && cfg.StopBits != types.StopBitsTwo:
		return bad("stop bits")
	case cfg.Parity > types.ParityOdd:
		return bad("parity")
	case cfg.Flow != types.FlowNone && cfg.Flow != types.FlowRTSCTS:
		return bad("flow control")
	}
	return nil
}

// Init configures the port and attaches the RX interrupt.
func (b *Bridge) Init(cfg types.UARTConfig) error {
	b.log.Info("init", logx.String("tag", b.tag), logx.Uint32("baud", cfg.Baud))
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := b.port.Configure(cfg); err != nil {
		return err
	}
	return b.port.SetRXInterrupt(b.ISR, true)
}

// AddListener registers fn for every subsequent batch.
func (b *Bridge) AddListener(fn Listener) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Write transmits p on the port.
func (b *Bridge) Write(p []byte) (int, error) { return b.port.Write(p) }

// Drops counts bytes discarded because the queue was full.
func (b *Bridge) Drops() uint32 { return b.drops.Load() }

// ISR drains every ready byte into the queue. Interrupt context: it never
// blocks and drops what does not fit.
func (b *Bridge) ISR() {
	for b.port.Readable() {
		c, err := b.port.ReadByte()
		if err != nil {
			return
		}
		if !b.ring.PushByte(c) {
			b.drops.Add(1)
		}
	}
}

// Start runs the consumer until ctx is cancelled.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return halerr.ErrAlreadyRunning
	}
	go b.run(ctx)
	return nil
}

// Done is closed when the consumer exits.
func (b *Bridge) Done() <-chan struct{} { return b.done }

func (b *Bridge) run(ctx context.Context) {
	defer close(b.done)
	buf := make([]byte, b.ring.Cap())
	for {
		select {
		case <-ctx.Done():
			b.log.Debug("stopped", logx.String("tag", b.tag))
			return
		case <-b.ring.Readable():
		}
		for {
			n := b.ring.ReadInto(buf)
			if n == 0 {
				break
			}
			b.deliver(buf[:n])
		}
	}
}

func (b *Bridge) deliver(p []byte) {
	b.mu.Lock()
	ls := b.listeners
	b.mu.Unlock()
	for _, fn := range ls {
		fn(b.tag, append([]byte(nil), p...))
	}
}

// Close detaches the RX interrupt and releases the port.
func (b *Bridge) Close() error {
	_ = b.port.SetRXInterrupt(nil, false)
	return b.port.Close()
}
