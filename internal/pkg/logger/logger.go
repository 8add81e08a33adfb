// Package logger はアプリケーション全体で共有するzapロガーを提供する
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

func init() {
	// main側でSetされるまでの既定ロガー
	global = NewLogger("development")
}

// NewLogger は環境名に応じたロガーを作成する
// production はJSON出力、それ以外は色付きのコンソール出力になる
func NewLogger(env string) *zap.Logger {
	var cfg zap.Config
	switch env {
	case "production":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// LOG_LEVEL=debug などで出力レベルを上書きできる。不正な値は無視
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	l, _ := cfg.Build()
	return l
}

// Get は共有ロガーを返す
func Get() *zap.Logger {
	return global
}

// Set は共有ロガーを差し替える（起動時・テスト用）
func Set(l *zap.Logger) {
	global = l
}

func Info(msg string, fields ...zap.Field) {
	global.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	global.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	global.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	global.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	global.Fatal(msg, fields...)
}

// With は共通フィールドを付与した子ロガーを返す
func With(fields ...zap.Field) *zap.Logger {
	return global.With(fields...)
}

func Sync() error {
	return global.Sync()
}
