// Package logger builds the zap logger shared by the commands and services.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Debug bool
	// File, when set, receives JSON logs with size-based rotation in
	// addition to the console output on stderr.
	File string
}

// New creates a logger. The console encoder writes to stderr so stdout stays
// clean for --json output.
func New(opts Options) *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if opts.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(env)); err == nil {
			level.SetLevel(l)
		}
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.TimeKey = ""

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.File != "" {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "timestamp"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), zapcore.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...)).Named("marquee")
}
