package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger JSON в production, цветная консоль иначе; level переопределяет уровень
func NewLogger(env, level string) *zap.Logger {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			panic("invalid LOG_LEVEL: " + err.Error())
		}
		config.Level = zap.NewAtomicLevelAt(parsed)
	}

	config.OutputPaths = []string{"stdout"}

	logger, err := config.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	return logger
}
