package registry

import (
	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
)

// Configs is the fixed-capacity, name-indexed peripheral table. Slots fill in
// insertion order; a name is never stored twice. Not safe for concurrent use:
// Gpio serialises access.
type Configs struct {
	slots []*halcore.Config
	next  int // next free slot
}

// NewConfigs panics on a non-positive capacity: the device cannot operate
// without its peripheral table.
func NewConfigs(capacity int) *Configs {
	if capacity <= 0 {
		panic("registry: capacity must be positive")
	}
	return &Configs{slots: make([]*halcore.Config, capacity)}
}

// FromTable builds a Configs holding table in order.
func FromTable(capacity int, table []halcore.Config) (*Configs, error) {
	c := NewConfigs(capacity)
	for _, cfg := range table {
		if err := c.Push(cfg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Configs) Cap() int { return len(c.slots) }
func (c *Configs) Len() int { return c.next }

// Push inserts cfg, or replaces the config already stored under its name.
// A replacement keeps its slot and succeeds even when the table is full.
func (c *Configs) Push(cfg halcore.Config) error {
	if !halcore.ValidName(cfg.Name) {
		return halerr.ErrInvalidName
	}
	if cfg.Role == nil {
		cfg.Role = halcore.NotInitialized{}
	}
	if _, i := c.find(cfg.Name); i >= 0 {
		c.slots[i] = &cfg
		return nil
	}
	if c.next >= len(c.slots) {
		return halerr.ErrOutOfIndex
	}
	c.slots[c.next] = &cfg
	c.next++
	return nil
}

// Get returns a copy of the config stored under name.
func (c *Configs) Get(name string) (halcore.Config, bool) {
	p, _ := c.find(name)
	if p == nil {
		return halcore.Config{}, false
	}
	out := *p
	if p.Interrupt != nil {
		irq := *p.Interrupt
		out.Interrupt = &irq
	}
	return out, true
}

// Names lists occupied slots in insertion order.
func (c *Configs) Names() []string {
	out := make([]string, 0, c.next)
	for i := 0; i < c.next; i++ {
		if c.slots[i] != nil {
			out = append(out, c.slots[i].Name)
		}
	}
	return out
}

func (c *Configs) find(name string) (*halcore.Config, int) {
	for i := 0; i < c.next; i++ {
		if s := c.slots[i]; s != nil && s.Name == name {
			return s, i
		}
	}
	return nil, -1
}
