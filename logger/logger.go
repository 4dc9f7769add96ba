package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultFileMaxSize    = 10 // MB
	DefaultFileMaxBackups = 5
)

type Config struct {
	Level      string `json:"level"`
	EnableJson bool   `json:"enableJson"`
	// DisableConsole drops the stderr sink, leaving only File when set.
	DisableConsole bool `json:"disableConsole"`

	File           string `json:"file"`
	FileMaxSize    int    `json:"fileMaxSize"`
	FileMaxBackups int    `json:"fileMaxBackups"`
	FileMaxAge     int    `json:"fileMaxAge"`
	Compress       bool   `json:"compress"`
}

func ParseLogLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(level) {
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level: %v", level)
}

// New builds a zap logger writing to stderr and, when File is set, to a
// size-rotated file.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.EnableJson {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	var cores []zapcore.Core
	if !cfg.DisableConsole {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
	}
	if cfg.File != "" {
		w := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.FileMaxSize,
			MaxBackups: cfg.FileMaxBackups,
			MaxAge:     cfg.FileMaxAge,
			Compress:   cfg.Compress,
		}
		if w.MaxSize == 0 {
			w.MaxSize = DefaultFileMaxSize
		}
		if w.MaxBackups == 0 {
			w.MaxBackups = DefaultFileMaxBackups
		}
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(w), level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
