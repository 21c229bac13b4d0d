package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

func New(cfg *Config) (*Logger, error) {
	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}, nil
}

// NewWriter logs JSON lines to w at debug level. Used by tests.
func NewWriter(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).Level(zerolog.DebugLevel)}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying the given fields on every event.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = f.addToContext(ctx)
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}
	for _, field := range fields {
		field.AddTo(event)
	}
	event.Msg(msg)
}

// Field is a typed key/value attached to a log event.
type Field struct {
	key   string
	kind  fieldKind
	str   string
	num   float64
	i64   int64
	flag  bool
	err   error
	value any
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
	kindBool
	kindError
	kindAny
)

func (f Field) AddTo(event *zerolog.Event) {
	switch f.kind {
	case kindString:
		event.Str(f.key, f.str)
	case kindInt:
		event.Int64(f.key, f.i64)
	case kindFloat:
		event.Float64(f.key, f.num)
	case kindBool:
		event.Bool(f.key, f.flag)
	case kindError:
		event.Err(f.err)
	default:
		event.Interface(f.key, f.value)
	}
}

func (f Field) addToContext(ctx zerolog.Context) zerolog.Context {
	switch f.kind {
	case kindString:
		return ctx.Str(f.key, f.str)
	case kindInt:
		return ctx.Int64(f.key, f.i64)
	case kindFloat:
		return ctx.Float64(f.key, f.num)
	case kindBool:
		return ctx.Bool(f.key, f.flag)
	case kindError:
		return ctx.Err(f.err)
	default:
		return ctx.Interface(f.key, f.value)
	}
}

// --- Field constructors ---

func String(key, value string) Field {
	return Field{key: key, kind: kindString, str: value}
}

func Int(key string, value int) Field {
	return Field{key: key, kind: kindInt, i64: int64(value)}
}

func Int64(key string, value int64) Field {
	return Field{key: key, kind: kindInt, i64: value}
}

func Float64(key string, value float64) Field {
	return Field{key: key, kind: kindFloat, num: value}
}

func Bool(key string, value bool) Field {
	return Field{key: key, kind: kindBool, flag: value}
}

func Error(err error) Field {
	return Field{key: "error", kind: kindError, err: err}
}

// Duration logs milliseconds.
func Duration(key string, value time.Duration) Field {
	return Field{key: key, kind: kindInt, i64: value.Milliseconds()}
}

func Time(key string, value time.Time) Field {
	return Field{key: key, kind: kindString, str: value.UTC().Format(time.RFC3339)}
}

func Any(key string, value any) Field {
	return Field{key: key, kind: kindAny, value: value}
}
