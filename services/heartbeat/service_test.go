package heartbeat

import (
	"context"
	"testing"
	"time"

	"hhgarden-go/bus"
)

func recvBeat(t *testing.T, s *bus.Subscription) map[string]any {
	t.Helper()
	select {
	case m := <-s.Channel():
		return m.Payload.(map[string]any)
	case <-time.After(time.Second):
		t.Fatal("no heartbeat")
		return nil
	}
}

func TestBeatsCarryStats(t *testing.T) {
	b := bus.NewBus(8)
	c := b.NewConnection("test")
	defer c.Disconnect()
	sub := c.Subscribe(TopicBeat)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		Interval: 5 * time.Millisecond,
		Stats:    func() map[string]any { return map[string]any{"uart_drops": uint32(3)} },
	}
	done := s.Start(ctx, b.NewConnection("heartbeat"))

	first := recvBeat(t, sub)
	second := recvBeat(t, sub)
	if first["n"] != uint32(1) || second["n"] != uint32(2) {
		t.Fatalf("sequence %v %v", first["n"], second["n"])
	}
	if first["uart_drops"] != uint32(3) {
		t.Fatalf("stats missing: %v", first)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestRetainedConfigSetsInterval(t *testing.T) {
	b := bus.NewBus(8)
	c := b.NewConnection("test")
	defer c.Disconnect()
	c.Publish(c.NewMessage(TopicConfig, map[string]any{"interval": "5ms"}, true))
	sub := c.Subscribe(TopicBeat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	(&Service{Interval: time.Hour}).Start(ctx, b.NewConnection("heartbeat"))

	recvBeat(t, sub)
}

func TestIntervalOf(t *testing.T) {
	cases := []struct {
		in   any
		want time.Duration
		ok   bool
	}{
		{map[string]any{"interval": 2.5}, 2500 * time.Millisecond, true},
		{map[string]any{"interval": 3}, 3 * time.Second, true},
		{map[string]any{"interval": 40 * time.Millisecond}, 40 * time.Millisecond, true},
		{map[string]any{"interval": "1m"}, time.Minute, true},
		{map[string]any{"interval": "soon"}, 0, false},
		{map[string]any{"interval": -1.0}, 0, false},
		{map[string]any{}, 0, false},
		{"interval=1", 0, false},
	}
	for _, c := range cases {
		got, ok := intervalOf(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("intervalOf(%v) = %v, %v", c.in, got, ok)
		}
	}
}
