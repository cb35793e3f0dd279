//go:build !(rp2040 || rp2350)

package platform

import (
	"sync/atomic"
	"testing"

	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/platform/boards"
	"hhgarden-go/services/hal/internal/registry"
	"hhgarden-go/types"
)

func bootSim(t *testing.T) (*Sim, *registry.Gpio) {
	t.Helper()
	sim := NewSim()
	cfgs, err := registry.FromTable(16, boards.PicoHHG().Peripherals)
	if err != nil {
		t.Fatal(err)
	}
	g := registry.New(sim.Host, cfgs)
	if err := g.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return sim, g
}

func TestHostDrivesBoard(t *testing.T) {
	sim, g := bootSim(t)

	if err := g.Write(boards.Relay2, 1); err != nil {
		t.Fatal(err)
	}
	if p, _ := sim.Pin(7); p.Level != 1 || p.Role != halcore.KindOutput {
		t.Fatalf("relay pin %+v", p)
	}
	if err := g.SetPWM(boards.LedBlue, 40000); err != nil {
		t.Fatal(err)
	}
	if p, _ := sim.Pin(15); p.Duty != 40000 {
		t.Fatalf("duty %d", p.Duty)
	}
	if v, err := g.Read(boards.Btn); err != nil || v != 1 {
		t.Fatalf("pulled-up button reads %d %v", v, err)
	}
	sim.SetADC(4, 1234)
	if v, _ := g.Read(boards.InternalTemp); v != 1234 {
		t.Fatalf("adc %d", v)
	}
	if _, ok := sim.I2C("i2c1"); !ok {
		t.Fatal("passthrough did not bring up i2c1")
	}
	if d, ok := sim.Chip(boards.Display); !ok || d.Driver != "sh1106" {
		t.Fatalf("display chip %+v", d)
	}
}

func TestInternalSensorLeavesPinZeroAlone(t *testing.T) {
	sim, g := bootSim(t)
	if err := g.Write(boards.InternalLed, 1); err != nil {
		t.Fatalf("write InternalLed after Init: %v", err)
	}
	if p, _ := sim.Pin(0); p.Role != halcore.KindOutput || p.Level != 1 {
		t.Fatalf("pin 0 %+v", p)
	}
	if v, err := g.Read(boards.InternalTemp); err != nil || v == 0 {
		t.Fatalf("die temperature %d %v", v, err)
	}

	h := NewHost()
	_ = h.ConfigureAnalog(halcore.Config{}, nil, 26, 0, 0)
	if p, _ := h.Pin(26); p.Role != halcore.KindAnalogInput {
		t.Fatalf("external channel pin %+v", p)
	}
}

func TestHostInterruptKinds(t *testing.T) {
	sim, g := bootSim(t)
	var n atomic.Int32
	h := func() { n.Add(1) }

	if err := g.SetInterrupt(boards.Btn, types.FallingEdge, true, h); err != nil {
		t.Fatal(err)
	}
	sim.Press(18) // falls then rises
	if n.Load() != 1 {
		t.Fatalf("falling edge fired %d times", n.Load())
	}

	_ = g.SetInterrupt(boards.Btn, types.BothEdge, true, h)
	sim.Press(18)
	if n.Load() != 3 {
		t.Fatalf("both edges fired %d total", n.Load())
	}

	_ = g.EnableInterrupt(boards.Btn, false)
	sim.Press(18)
	if n.Load() != 3 {
		t.Fatal("disabled interrupt fired")
	}
}

func TestHostRejectsOutOfRangeDuty(t *testing.T) {
	_, g := bootSim(t)
	// Registry duty is uint16, so drive the capability directly.
	sim := NewHost()
	_ = sim.ConfigurePWM(halcore.Config{}, nil, 13, 0)
	if sim.SetPWM(halcore.Config{}, nil, 13, uint32(types.PWMTop)+1) {
		t.Fatal("duty above top accepted")
	}
	if err := g.SetPWM(boards.LedRed, types.PWMTop); err != nil {
		t.Fatal(err)
	}
}

func TestHostUARTInjectCallsHandler(t *testing.T) {
	u := NewHostUART("uart1")
	defer u.Close()
	var got []byte
	_ = u.SetRXInterrupt(func() {
		for u.Readable() {
			c, _ := u.ReadByte()
			got = append(got, c)
		}
	}, true)
	u.Inject([]byte("ok"))
	if string(got) != "ok" {
		t.Fatalf("got %q", got)
	}
	if _, err := u.ReadByte(); err == nil {
		t.Fatal("read from drained port")
	}

	_ = u.SetRXInterrupt(nil, false)
	u.Inject(make([]byte, hostRXBuffer+3))
	if u.Overruns() != 3 {
		t.Fatalf("overruns %d", u.Overruns())
	}

	_, _ = u.Write([]byte("tx"))
	if string(u.Sent()) != "tx" || len(u.Sent()) != 0 {
		t.Fatal("tx capture")
	}
}

func TestSimRadio(t *testing.T) {
	r := NewSimRadio()
	if st, _ := r.Connect("x", "", types.AuthOpen); st != types.LinkFail {
		t.Fatalf("connect before init = %s", st)
	}
	_ = r.Init()
	_ = r.EnableSTA()
	r.Network = "garden"
	if st, _ := r.Connect("other", "", types.AuthWpa2); st != types.LinkNoNet {
		t.Fatalf("wrong ssid = %s", st)
	}
	if st, _ := r.Connect("garden", "", types.AuthWpa2); st != types.LinkUp || r.LinkStatus() != types.LinkUp {
		t.Fatalf("join = %s", st)
	}
	r.FailConnect = types.LinkBadAuth
	if st, _ := r.Connect("garden", "", types.AuthWpa2); st != types.LinkBadAuth {
		t.Fatalf("scripted failure = %s", st)
	}
}
