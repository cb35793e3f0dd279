//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"
	"sync"

	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/types"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// RP2UART adapts uartx to halcore.UARTPort. uartx owns the hardware RX
// interrupt and buffers bytes; a pump goroutine forwards each readable edge
// to the attached handler.
type RP2UART struct {
	u      *uartx.UART
	tx, rx machine.Pin

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ halcore.UARTPort = (*RP2UART)(nil)

func NewRP2UART(id string, tx, rx uint32) *RP2UART {
	u := uartx.UART0
	if id == "uart1" {
		u = uartx.UART1
	}
	return &RP2UART{u: u, tx: machine.Pin(tx), rx: machine.Pin(rx)}
}

func (p *RP2UART) Configure(cfg types.UARTConfig) error {
	c := uartx.UARTConfig{BaudRate: cfg.Baud, TX: p.tx, RX: p.rx}
	if err := p.u.Configure(c); err != nil {
		return err
	}
	par := uartx.ParityNone
	switch cfg.Parity {
	case types.ParityEven:
		par = uartx.ParityEven
	case types.ParityOdd:
		par = uartx.ParityOdd
	}
	stop := uint8(1)
	if cfg.StopBits == types.StopBitsTwo {
		stop = 2
	}
	return p.u.SetFormat(cfg.DataBits, stop, par)
}

func (p *RP2UART) Readable() bool              { return p.u.Buffered() > 0 }
func (p *RP2UART) ReadByte() (byte, error)     { return p.u.ReadByte() }
func (p *RP2UART) Write(b []byte) (int, error) { return p.u.Write(b) }

func (p *RP2UART) SetRXInterrupt(h halcore.InterruptHandler, enable bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if !enable || h == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go func() {
		for p.u.WaitReadable(ctx) == nil {
			h()
		}
	}()
	return nil
}

func (p *RP2UART) Close() error {
	_ = p.SetRXInterrupt(nil, false)
	return nil
}
