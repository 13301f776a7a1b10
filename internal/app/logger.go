package app

import (
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logRetention = 7 * 24 * time.Hour

// NewLogger создаёт логгер; если задан logDir, записи дублируются в файл с суточной ротацией
func NewLogger(env, logDir string) *zap.Logger {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}

	logger, err := config.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	if logDir == "" {
		return logger
	}

	fileCore, err := newFileCore(logDir, config.Level)
	if err != nil {
		logger.Warn("File logging disabled", zap.String("dir", logDir), zap.Error(err))
		return logger
	}

	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
}

func newFileCore(logDir string, level zapcore.LevelEnabler) (zapcore.Core, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	writer, err := rotatelogs.New(
		filepath.Join(logDir, "groupmate.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(logDir, "groupmate.log")),
		rotatelogs.WithMaxAge(logRetention),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	// в файл всегда JSON, без цветных уровней
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zapcore.NewCore(encoder, zapcore.AddSync(writer), level), nil
}
