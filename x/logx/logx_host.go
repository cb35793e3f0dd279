//go:build !(rp2040 || rp2350)

package logx

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var root atomic.Pointer[zap.Logger]

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	root.Store(l)
}

// Use installs l as the sink for every Logger, including ones created earlier.
func Use(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	root.Store(l)
}

// SetCore is a shorthand for Use(zap.New(core)).
func SetCore(core zapcore.Core) { Use(zap.New(core)) }

// Root returns the current zap logger.
func Root() *zap.Logger { return root.Load() }

// Logger is a named logger; the name is the subsystem tag ("GPIO", "WIFI", ...).
type Logger struct {
	tag string
}

func New(tag string) *Logger { return &Logger{tag: tag} }

func (l *Logger) z() *zap.Logger { return root.Load().Named(l.tag) }

func (l *Logger) Debug(msg string, f ...Field) { l.z().Debug(msg, toZap(f)...) }
func (l *Logger) Info(msg string, f ...Field)  { l.z().Info(msg, toZap(f)...) }
func (l *Logger) Warn(msg string, f ...Field)  { l.z().Warn(msg, toZap(f)...) }
func (l *Logger) Error(msg string, f ...Field) { l.z().Error(msg, toZap(f)...) }

func toZap(fs []Field) []zap.Field {
	if len(fs) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fs))
	for _, f := range fs {
		switch v := f.Val.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case uint32:
			out = append(out, zap.Uint32(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}
