package uartio

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hhgarden-go/errcode"
	"hhgarden-go/services/hal/internal/halcore"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
)

// fakeUART holds pending RX bytes; tests call the attached handler to
// simulate the RX interrupt.
type fakeUART struct {
	mu      sync.Mutex
	rx      []byte
	tx      bytes.Buffer
	cfg     types.UARTConfig
	handler halcore.InterruptHandler
	closed  bool
}

func (f *fakeUART) Configure(cfg types.UARTConfig) error { f.cfg = cfg; return nil }
func (f *fakeUART) Readable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rx) > 0
}
func (f *fakeUART) ReadByte() (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rx) == 0 {
		return 0, errors.New("empty")
	}
	c := f.rx[0]
	f.rx = f.rx[1:]
	return c, nil
}
func (f *fakeUART) Write(p []byte) (int, error) { return f.tx.Write(p) }
func (f *fakeUART) SetRXInterrupt(h halcore.InterruptHandler, enable bool) error {
	if enable {
		f.handler = h
	} else {
		f.handler = nil
	}
	return nil
}
func (f *fakeUART) Close() error { f.closed = true; return nil }

func (f *fakeUART) receive(p []byte) {
	f.mu.Lock()
	f.rx = append(f.rx, p...)
	f.mu.Unlock()
	if f.handler != nil {
		f.handler()
	}
}

type collector struct {
	mu     sync.Mutex
	source string
	data   []byte
	batch  chan struct{}
}

func newCollector() *collector { return &collector{batch: make(chan struct{}, 64)} }

func (c *collector) listen(source string, p []byte) {
	c.mu.Lock()
	c.source = source
	c.data = append(c.data, p...)
	c.mu.Unlock()
	c.batch <- struct{}{}
}

func (c *collector) waitLen(t *testing.T, n int) []byte {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		c.mu.Lock()
		got := append([]byte(nil), c.data...)
		c.mu.Unlock()
		if len(got) >= n {
			return got
		}
		select {
		case <-c.batch:
		case <-deadline:
			t.Fatalf("timeout: have %d bytes, want %d", len(got), n)
		}
	}
}

func newBridge(t *testing.T) (*Bridge, *fakeUART) {
	t.Helper()
	u := &fakeUART{}
	b, err := New("console", u, DefaultQueue)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Init(types.DefaultUART()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return b, u
}

func TestForwardsBatchesWithTag(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b, u := newBridge(t)
	c := newCollector()
	b.AddListener(c.listen)
	if err := b.Start(ctx); err != nil {
		t.Fatal(err)
	}

	u.receive([]byte("hello "))
	u.receive([]byte("garden"))
	got := c.waitLen(t, 12)
	if string(got) != "hello garden" || c.source != "console" {
		t.Fatalf("got %q from %q", got, c.source)
	}
	if b.Drops() != 0 {
		t.Fatalf("drops = %d", b.Drops())
	}
}

func TestOverflowDropsOnlyExcess(t *testing.T) {
	b, u := newBridge(t)
	sent := make([]byte, 100)
	for i := range sent {
		sent[i] = byte(i)
	}
	// Consumer not running yet: everything lands between two wake-ups.
	u.receive(sent)
	if b.Drops() != 100-DefaultQueue {
		t.Fatalf("drops = %d", b.Drops())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newCollector()
	b.AddListener(c.listen)
	_ = b.Start(ctx)

	got := c.waitLen(t, DefaultQueue)
	if !bytes.Equal(got, sent[:DefaultQueue]) {
		t.Fatalf("queue content corrupted: %v", got)
	}
}

func TestMultipleListeners(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b, u := newBridge(t)
	c1, c2 := newCollector(), newCollector()
	b.AddListener(c1.listen)
	b.AddListener(nil)
	b.AddListener(c2.listen)
	_ = b.Start(ctx)

	u.receive([]byte{1, 2, 3})
	if got := c1.waitLen(t, 3); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("c1 %v", got)
	}
	if got := c2.waitLen(t, 3); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("c2 %v", got)
	}
}

func TestNewRejectsBadQueue(t *testing.T) {
	for _, n := range []int{0, 1, 63} {
		_, err := New("x", &fakeUART{}, n)
		if !errors.Is(err, halerr.ErrOutOfMemory) || errcode.Of(err) != errcode.OutOfMemory {
			t.Fatalf("queue %d: %v", n, err)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := types.DefaultUART()
	if err := Validate(ok); err != nil {
		t.Fatal(err)
	}
	cases := map[string]func(c *types.UARTConfig){
		"baud":      func(c *types.UARTConfig) { c.Baud = 0 },
		"data bits": func(c *types.UARTConfig) { c.DataBits = 4 },
		"half stop": func(c *types.UARTConfig) { c.StopBits = types.StopBitsHalf },
		"1.5 stop":  func(c *types.UARTConfig) { c.StopBits = types.StopBitsOneAndHalf },
		"xon/xoff":  func(c *types.UARTConfig) { c.Flow = types.FlowXonXoff },
	}
	for name, mut := range cases {
		c := ok
		mut(&c)
		if err := Validate(c); !errors.Is(err, halerr.ErrInvalidType) {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestWriteCloseAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b, u := newBridge(t)
	_ = b.Start(ctx)
	if err := b.Start(ctx); !errors.Is(err, halerr.ErrAlreadyRunning) {
		t.Fatalf("second start: %v", err)
	}
	if n, err := b.Write([]byte("AT\r\n")); err != nil || n != 4 || u.tx.String() != "AT\r\n" {
		t.Fatalf("write %d %v %q", n, err, u.tx.String())
	}
	cancel()
	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	if err := b.Close(); err != nil || !u.closed || u.handler != nil {
		t.Fatalf("close: %v closed=%v", err, u.closed)
	}
}
