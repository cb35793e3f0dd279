// Package logx is the tagged logger used across the firmware. Host builds log
// through zap; MCU builds print with the builtin println.
package logx

// Field is one key/value pair attached to a log line.
type Field struct {
	Key string
	Val any
}

func String(k, v string) Field        { return Field{k, v} }
func Int(k string, v int) Field       { return Field{k, v} }
func Uint32(k string, v uint32) Field { return Field{k, v} }
func Bool(k string, v bool) Field     { return Field{k, v} }
func Any(k string, v any) Field       { return Field{k, v} }

// Err attaches an error under the "error" key.
func Err(err error) Field { return Field{"error", err} }
