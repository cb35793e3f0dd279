//go:build !(rp2040 || rp2350)

package platform

import (
	"bytes"
	"io"
	"sync"

	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/types"
	"hhgarden-go/x/shmring"
)

// hostRXBuffer is the simulated receive FIFO depth.
const hostRXBuffer = 256

// HostUART implements halcore.UARTPort in memory. Inject plays the role of
// the RX interrupt: it lands bytes in the receive ring, dropping what does
// not fit as an overrun would, and calls the attached handler on the
// injecting goroutine.
type HostUART struct {
	rx *shmring.Ring

	mu      sync.Mutex
	cfg     types.UARTConfig
	handler halcore.InterruptHandler
	tx      bytes.Buffer
	overrun uint32
}

var _ halcore.UARTPort = (*HostUART)(nil)

// NewHostUART takes the port name for symmetry with NewRP2UART; host ports
// are independent of each other.
func NewHostUART(string) *HostUART {
	return &HostUART{rx: shmring.New(hostRXBuffer)}
}

func (p *HostUART) Configure(cfg types.UARTConfig) error {
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
	return nil
}

func (p *HostUART) Config() types.UARTConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *HostUART) Readable() bool { return p.rx.Available() > 0 }

func (p *HostUART) ReadByte() (byte, error) {
	var b [1]byte
	if p.rx.ReadInto(b[:]) == 0 {
		return 0, io.EOF
	}
	return b[0], nil
}

// Write records transmitted bytes for Sent.
func (p *HostUART) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tx.Write(b)
}

// Sent drains what has been written so far.
func (p *HostUART) Sent() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]byte(nil), p.tx.Bytes()...)
	p.tx.Reset()
	return out
}

// Overruns counts injected bytes lost to a full receive ring.
func (p *HostUART) Overruns() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overrun
}

func (p *HostUART) SetRXInterrupt(h halcore.InterruptHandler, enable bool) error {
	p.mu.Lock()
	if enable {
		p.handler = h
	} else {
		p.handler = nil
	}
	p.mu.Unlock()
	return nil
}

// Inject simulates bytes arriving on the wire. Callers must not inject
// from more than one goroutine at a time.
func (p *HostUART) Inject(b []byte) {
	var lost uint32
	for _, c := range b {
		if !p.rx.PushByte(c) {
			lost++
		}
	}
	p.mu.Lock()
	p.overrun += lost
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h()
	}
}

func (p *HostUART) Close() error {
	_ = p.SetRXInterrupt(nil, false)
	var sink [hostRXBuffer]byte
	for p.rx.ReadInto(sink[:]) > 0 {
	}
	return nil
}
