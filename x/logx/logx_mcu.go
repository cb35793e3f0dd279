//go:build rp2040 || rp2350

package logx

// Logger prints "[TAG] LEVEL msg k=v ..." on the console. Only strings,
// integers, bools and errors are rendered; anything else prints as "?".
type Logger struct {
	tag string
}

func New(tag string) *Logger { return &Logger{tag: tag} }

func (l *Logger) Debug(msg string, f ...Field) { l.line("DEBUG", msg, f) }
func (l *Logger) Info(msg string, f ...Field)  { l.line("INFO", msg, f) }
func (l *Logger) Warn(msg string, f ...Field)  { l.line("WARN", msg, f) }
func (l *Logger) Error(msg string, f ...Field) { l.line("ERROR", msg, f) }

func (l *Logger) line(level, msg string, fs []Field) {
	print("[", l.tag, "] ", level, " ", msg)
	for _, f := range fs {
		print(" ", f.Key, "=")
		switch v := f.Val.(type) {
		case string:
			print(v)
		case int:
			print(v)
		case uint32:
			print(v)
		case bool:
			print(v)
		case error:
			print(v.Error())
		case interface{ String() string }:
			print(v.String())
		default:
			print("?")
		}
	}
	println()
}
