// Package heartbeat publishes a periodic liveness beat on the bus. The
// interval follows the retained config/heartbeat message.
package heartbeat

import (
	"context"
	"time"

	"hhgarden-go/bus"
	"hhgarden-go/x/logx"
)

var (
	TopicConfig = bus.T("config", "heartbeat")
	TopicBeat   = bus.T("sys", "heartbeat")
)

const DefaultInterval = time.Second

// Service ticks every Interval. Stats, when set, is merged into each beat.
type Service struct {
	Interval time.Duration
	Stats    func() map[string]any

	log *logx.Logger
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, done chan struct{}) {
	defer close(done)
	cfgSub := conn.Subscribe(TopicConfig)
	defer conn.Unsubscribe(cfgSub)

	iv := s.Interval
	if iv <= 0 {
		iv = DefaultInterval
	}
	tick := time.NewTicker(iv)
	defer tick.Stop()

	var n uint32
	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopping")
			return
		case t := <-tick.C:
			n++
			beat := map[string]any{"n": n, "ts_ms": t.UnixMilli()}
			if s.Stats != nil {
				for k, v := range s.Stats() {
					beat[k] = v
				}
			}
			conn.Publish(conn.NewMessage(TopicBeat, beat, false))
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			d, ok := intervalOf(msg.Payload)
			if !ok {
				s.log.Warn("bad config", logx.Any("payload", msg.Payload))
				continue
			}
			tick.Reset(d)
			s.log.Info("interval set", logx.String("interval", d.String()))
		}
	}
}

// Start runs the service until ctx ends. The returned channel closes once
// the loop has exited.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) <-chan struct{} {
	if s.log == nil {
		s.log = logx.New("HEARTBEAT")
	}
	done := make(chan struct{})
	go s.serviceLoop(ctx, conn, done)
	return done
}

// intervalOf reads {"interval": v} where v is seconds (number), a
// time.Duration or a duration string.
func intervalOf(payload any) (time.Duration, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	var d time.Duration
	switch v := m["interval"].(type) {
	case float64:
		d = time.Duration(v * float64(time.Second))
	case int:
		d = time.Duration(v) * time.Second
	case time.Duration:
		d = v
	case string:
		var err error
		if d, err = time.ParseDuration(v); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	return d, d > 0
}
