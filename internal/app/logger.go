package app

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// defaultLevels уровень логирования по окружению, если LOG_LEVEL не задан
var defaultLevels = map[string]zapcore.Level{
	"production":  zapcore.InfoLevel,
	"staging":     zapcore.InfoLevel,
	"test":        zapcore.WarnLevel,
	"development": zapcore.DebugLevel,
}

// LevelFor выбирает уровень: явный level важнее окружения.
// Неизвестное окружение логируется как development.
func LevelFor(env, level string) (zapcore.Level, error) {
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return zapcore.InfoLevel, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		return parsed, nil
	}
	if l, ok := defaultLevels[env]; ok {
		return l, nil
	}
	return zapcore.DebugLevel, nil
}

// NewLogger JSON в production и staging, цветная консоль в остальных окружениях
func NewLogger(env, level string) (*zap.Logger, error) {
	lvl, err := LevelFor(env, level)
	if err != nil {
		return nil, err
	}

	var config zap.Config
	switch env {
	case "production", "staging":
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "ts"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stdout"}
	config.InitialFields = map[string]interface{}{
		"service": "artacademy",
		"env":     env,
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
