// Package logging monta o logger do processo: uma linha por chamada, no formato
// "<timestamp> [<level>]: <message>", escrita no console e num arquivo append-only.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultFile  = "logs/combined.log"
	DefaultLevel = "info"

	// sem LOG_MAX_SIZE_MB o arquivo nunca rotaciona na prática (1 TiB).
	noRotationMB = 1 << 20

	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

type Config struct {
	Level string
	// File vazio desliga o sink em arquivo.
	File      string
	Color     bool
	MaxSizeMB int
	// Console é stdout quando nil.
	Console io.Writer
}

// New devolve o logger e um io.Closer para o arquivo (chame no shutdown).
func New(cfg Config) (*zap.Logger, io.Closer, error) {
	lvlText := strings.TrimSpace(cfg.Level)
	if lvlText == "" {
		lvlText = DefaultLevel
	}
	level, err := zapcore.ParseLevel(lvlText)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(cfg.Color)),
			zapcore.Lock(zapcore.AddSync(console)),
			level,
		),
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = noRotationMB
		}
		file := &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  maxSize,
		}
		closer = file
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(false)),
			zapcore.AddSync(file),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), closer, nil
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		LevelKey:         "level",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       encodeTime,
		EncodeLevel:      levelEncoder(color),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

func encodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(timeLayout))
}

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel: "\x1b[34m",
	zapcore.InfoLevel:  "\x1b[32m",
	zapcore.WarnLevel:  "\x1b[33m",
	zapcore.ErrorLevel: "\x1b[31m",
}

func levelEncoder(color bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name := l.String()
		if c, ok := levelColors[l]; ok && color {
			name = c + name + "\x1b[0m"
		}
		enc.AppendString("[" + name + "]:")
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
