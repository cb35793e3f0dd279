//go:build !(rp2040 || rp2350)

package platform

import (
	"fmt"
	"sync"
)

// HostI2C is a register-map I2C bus for host builds. Each attached address
// behaves like a chip with a 256-byte register file and an auto-incrementing
// register pointer, which is how the DS3231 and most sensors behave.
type HostI2C struct {
	mu   sync.Mutex
	devs map[uint16]*[256]byte
	Txs  int
}

func NewHostI2C() *HostI2C { return &HostI2C{devs: map[uint16]*[256]byte{}} }

// Attach adds a simulated chip at addr.
func (h *HostI2C) Attach(addr uint16) {
	h.mu.Lock()
	if _, ok := h.devs[addr]; !ok {
		h.devs[addr] = new([256]byte)
	}
	h.mu.Unlock()
}

// Poke sets a register directly, e.g. to preload sensor readings.
func (h *HostI2C) Poke(addr uint16, reg uint8, v ...byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d := h.devs[addr]; d != nil {
		for i, b := range v {
			d[reg+uint8(i)] = b
		}
	}
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Txs++
	d := h.devs[addr]
	if d == nil {
		return fmt.Errorf("i2c: no device at 0x%02x", addr)
	}
	var ptr uint8
	if len(w) > 0 {
		ptr = w[0]
		for _, b := range w[1:] {
			d[ptr] = b
			ptr++
		}
	}
	for i := range r {
		r[i] = d[ptr]
		ptr++
	}
	return nil
}
