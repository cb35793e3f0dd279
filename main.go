package main

import (
	"context"
	"time"

	"hhgarden-go/bus"
	"hhgarden-go/services/hal"
	"hhgarden-go/services/hal/config"
	"hhgarden-go/services/heartbeat"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	b := bus.NewBus(32)
	app, err := hal.Boot(context.Background(), config.Defaults(), b)
	if err != nil {
		println("boot failed:", err.Error())
		return
	}
	defer app.Close()

	hb := &heartbeat.Service{Stats: func() map[string]any {
		if u := app.UART(); u != nil {
			return map[string]any{"uart_drops": u.Drops()}
		}
		return nil
	}}
	hb.Start(context.Background(), b.NewConnection("heartbeat"))

	conn := b.NewConnection("main")
	events := conn.Subscribe(bus.T("hal", "#"))
	beats := conn.Subscribe(heartbeat.TopicBeat)

	if led, ok := app.LED(); ok {
		_ = led.Fade(context.Background(), hal.Color{G: 255}, 500*time.Millisecond, 25)
	}

	for {
		select {
		case m := <-events.Channel():
			println(m.Topic.String())
		case m := <-beats.Channel():
			p := m.Payload.(map[string]any)
			n, _ := p["n"].(uint32)
			drops, _ := p["uart_drops"].(uint32)
			println("heartbeat", n, "uart_drops", drops)
		}
	}
}
