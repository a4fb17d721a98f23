package observability

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	timeLayout = "2006-01-02 15:04:05.000"
)

// InitLogger строит логгер сервиса. format: json (по умолчанию) или console для локального запуска.
func InitLogger(level, format string) *zap.SugaredLogger {
	logger, err := loggerConfig(level, format).Build()
	if err != nil {
		log.Fatal(err)
	}

	return logger.Sugar().With("service", "calendarback")
}

func loggerConfig(level, format string) zap.Config {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(strings.TrimSpace(format), FormatConsole) {
		cfg.Encoding = FormatConsole
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// все сообщения цикла рассылки нужны в логе, семплирование выключено
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	cfg.Level = zap.NewAtomicLevelAt(DetermineLogLevel(level))
	return cfg
}

// DetermineLogLevel понимает имена уровней zap и "warning"; неизвестное значение - info.
func DetermineLogLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zap.WarnLevel
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		return zap.InfoLevel
	}
	return lvl
}
