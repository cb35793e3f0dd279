package hal

import (
	"context"
	"encoding/json"
	"time"

	"hhgarden-go/bus"
	"hhgarden-go/errcode"
	"hhgarden-go/services/hal/internal/devices/rgbled"
	"hhgarden-go/services/hal/internal/halerr"
	"hhgarden-go/types"
	"hhgarden-go/x/logx"
)

// Topics published by the app.
var (
	TopicState      = bus.T("hal", "state")
	TopicWifiStatus = bus.T("hal", "wifi", "status")
)

func TopicButtonClick(name string) bus.Topic { return bus.T("hal", "button", name, "click") }
func TopicUARTRX(tag string) bus.Topic       { return bus.T("hal", "uart", tag, "rx") }

// TopicControl addresses a request: hal/<kind>/<name>/control/<method>.
func TopicControl(kind, name, method string) bus.Topic {
	return bus.T("hal", kind, name, "control", method)
}

// Control payloads. Requests may carry these as structs, maps or JSON.
type (
	PinValue struct{ Value uint32 }
	PinDuty  struct{ Duty uint16 }
	RelayOn  struct{ On bool }
	LEDColor struct {
		R, G, B uint8
		MS      int    `json:"ms"`
		Steps   uint16 `json:"steps"`
	}
	RTCTime struct{ Time string }
	TXData  struct{ Data string }
)

func (a *App) loop(ctx context.Context, sub *bus.Subscription, done chan struct{}) {
	defer close(done)
	defer a.conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			a.handle(ctx, msg)
		}
	}
}

func (a *App) handle(ctx context.Context, msg *bus.Message) {
	if len(msg.Topic) != 5 {
		return
	}
	kind, _ := msg.Topic[1].(string)
	name, _ := msg.Topic[2].(string)
	method, _ := msg.Topic[4].(string)
	a.log.Debug("control", logx.String("kind", kind), logx.String("name", name), logx.String("method", method))

	res, err := a.dispatch(ctx, kind, name, method, msg.Payload)
	if err != nil {
		a.replyErr(msg, err)
		return
	}
	a.replyOK(msg, res)
}

func (a *App) dispatch(ctx context.Context, kind, name, method string, payload any) (map[string]any, error) {
	switch kind + "/" + method {
	case "pin/write":
		var p PinValue
		if err := decode(payload, &p); err != nil {
			return nil, err
		}
		return nil, a.gpio.Write(name, p.Value)
	case "pin/read":
		v, err := a.gpio.Read(name)
		return map[string]any{"value": v}, err
	case "pin/pwm":
		var p PinDuty
		if err := decode(payload, &p); err != nil {
			return nil, err
		}
		return nil, a.gpio.SetPWM(name, p.Duty)

	case "relay/set":
		var p RelayOn
		if err := decode(payload, &p); err != nil {
			return nil, err
		}
		return nil, a.relays.Set(name, p.On)
	case "relay/off":
		return nil, a.relays.AllOff()

	case "led/set", "led/fade":
		if a.led == nil {
			return nil, halerr.ErrNotFound
		}
		var p LEDColor
		if err := decode(payload, &p); err != nil {
			return nil, err
		}
		c := rgbled.Color{R: p.R, G: p.G, B: p.B}
		if method == "set" {
			return nil, a.led.SetColor(c)
		}
		return nil, a.led.Fade(ctx, c, time.Duration(p.MS)*time.Millisecond, p.Steps)

	case "wifi/start":
		return nil, a.wifi.Start(ctx)
	case "wifi/status":
		cur, prev := a.wifi.Status()
		out := map[string]any{"status": cur.String(), "previous": prev.String()}
		if err := a.wifi.Err(); err != nil {
			out["last_error"] = err.Error()
		}
		return out, nil

	case "rtc/get", "rtc/set":
		if a.rtc == nil {
			return nil, halerr.ErrNotFound
		}
		if method == "set" {
			var p RTCTime
			if err := decode(payload, &p); err != nil {
				return nil, err
			}
			t, err := time.Parse(time.RFC3339, p.Time)
			if err != nil {
				return nil, &errcode.E{C: errcode.InvalidType, Op: "rtc.set", Msg: p.Time, Err: err}
			}
			return nil, a.rtc.Set(t)
		}
		t, err := a.rtc.Now()
		if err != nil {
			return nil, err
		}
		return map[string]any{"time": t.Format(time.RFC3339), "valid": a.rtc.Valid()}, nil

	case "uart/write":
		if a.uart == nil || a.uart.Tag() != name {
			return nil, halerr.ErrNotFound
		}
		var p TXData
		if err := decode(payload, &p); err != nil {
			return nil, err
		}
		n, err := a.uart.Write([]byte(p.Data))
		return map[string]any{"n": n, "drops": a.uart.Drops()}, err

	case "button/state":
		b, ok := a.Button(name)
		if !ok {
			return nil, halerr.ErrNotFound
		}
		return map[string]any{"state": b.State().String()}, nil
	}
	return nil, halerr.ErrUnsupported
}

func (a *App) replyOK(req *bus.Message, extra map[string]any) {
	if len(req.ReplyTo) == 0 {
		return
	}
	m := map[string]any{"ok": true}
	for k, v := range extra {
		m[k] = v
	}
	a.conn.Reply(req, m, false)
}

func (a *App) replyErr(req *bus.Message, err error) {
	a.log.Warn("control failed", logx.String("topic", req.Topic.String()), logx.Err(err))
	if len(req.ReplyTo) == 0 {
		return
	}
	m := map[string]any{"ok": false, "error": err.Error(), "code": string(errcode.Of(err))}
	if ret, ok := errcode.ReturnCode(err); ok {
		m["ret"] = ret
	}
	a.conn.Reply(req, m, false)
}

// decode accepts the payload already typed, as JSON, or as any value that
// round-trips through JSON (maps from other services).
func decode[T any](src any, dst *T) error {
	var err error
	switch v := src.(type) {
	case nil:
		return nil
	case T:
		*dst = v
		return nil
	case *T:
		*dst = *v
		return nil
	case []byte:
		err = json.Unmarshal(v, dst)
	case string:
		err = json.Unmarshal([]byte(v), dst)
	default:
		var b []byte
		if b, err = json.Marshal(v); err == nil {
			err = json.Unmarshal(b, dst)
		}
	}
	if err != nil {
		return &errcode.E{C: errcode.InvalidType, Op: "hal.decode", Msg: err.Error(), Err: halerr.ErrInvalidType}
	}
	return nil
}

// WifiStatusOf decodes a retained hal/wifi/status payload.
func WifiStatusOf(payload any) (cur, prev types.WifiStatus, ok bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, 0, false
	}
	cs, _ := m["status"].(string)
	ps, _ := m["previous"].(string)
	cur, ok1 := parseStatus(cs)
	prev, ok2 := parseStatus(ps)
	return cur, prev, ok1 && ok2
}

func parseStatus(s string) (types.WifiStatus, bool) {
	for st := types.WifiDisabled; st <= types.WifiError; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}
