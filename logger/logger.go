package logger

import (
	"log/slog"
	"os"
)

// InitLogger 전역 로거 초기화
// JSON 핸들러를 stdout 으로 구성한다. LOG_LEVEL 로 레벨 조정 가능.
func InitLogger() {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
