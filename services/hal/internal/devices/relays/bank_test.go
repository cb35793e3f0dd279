//go:build !(rp2040 || rp2350)

package relays

import (
	"errors"
	"testing"

	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/services/hal/internal/platform"
	"hhgarden-go/services/hal/internal/platform/boards"
	"hhgarden-go/services/hal/internal/registry"
)

var relayPins = map[string]uint32{boards.Relay1: 6, boards.Relay2: 7, boards.Relay3: 8, boards.Relay4: 9}

func newBank(t *testing.T) (*platform.Sim, *Bank) {
	t.Helper()
	sim := platform.NewSim()
	cfgs, err := registry.FromTable(16, boards.PicoHHG().Peripherals)
	if err != nil {
		t.Fatal(err)
	}
	g := registry.New(sim.Host, cfgs)
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}
	return sim, New(g, boards.Relays...)
}

func levels(sim *platform.Sim) map[string]uint32 {
	out := map[string]uint32{}
	for name, pin := range relayPins {
		p, _ := sim.Pin(pin)
		out[name] = p.Level
	}
	return out
}

func TestSetAndAllOff(t *testing.T) {
	sim, b := newBank(t)
	if err := b.Set(boards.Relay3, true); err != nil {
		t.Fatal(err)
	}
	if got := levels(sim); got[boards.Relay3] != 1 || got[boards.Relay1] != 0 {
		t.Fatalf("levels %v", got)
	}
	if err := b.SetMany(map[string]bool{boards.Relay1: true, boards.Relay4: true}); err != nil {
		t.Fatal(err)
	}
	if got := levels(sim); got[boards.Relay1] != 1 || got[boards.Relay4] != 1 || got[boards.Relay3] != 1 {
		t.Fatalf("levels %v", got)
	}
	if err := b.AllOff(); err != nil {
		t.Fatal(err)
	}
	for name, v := range levels(sim) {
		if v != 0 {
			t.Fatalf("%s still on", name)
		}
	}
}

func TestRejectsNonRelayWithoutWriting(t *testing.T) {
	sim, b := newBank(t)
	err := b.SetMany(map[string]bool{boards.Relay2: true, boards.InternalLed: true})
	if !errors.Is(err, halerr.ErrInvalidName) {
		t.Fatalf("err = %v", err)
	}
	if got := levels(sim); got[boards.Relay2] != 0 {
		t.Fatal("valid entry was written despite the rejected name")
	}
	if err := b.Set(boards.Btn, true); !errors.Is(err, halerr.ErrInvalidName) {
		t.Fatalf("button accepted as relay: %v", err)
	}
}

func TestNamesIsACopy(t *testing.T) {
	_, b := newBank(t)
	n := b.Names()
	n[0] = "x"
	if b.Names()[0] != boards.Relay1 {
		t.Fatal("Names exposed internal slice")
	}
}
