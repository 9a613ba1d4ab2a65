package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLogger *zap.Logger
var Log *zap.SugaredLogger

func init() {
	InitLogger()
}

// Build the shared planner logger: JSON encoding to stdout, level taken
// from LOG_LEVEL. Idempotent.
func InitLogger() *zap.SugaredLogger {
	if zapLogger != nil {
		Log = zapLogger.Sugar()
		return Log
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.LevelKey = "level"
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		GetZapLevelFromEnv(),
	)

	zapLogger = zap.New(core)
	Log = zapLogger.Sugar()
	return Log
}

func GetZapLevelFromEnv() zapcore.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SyncLogger ensures buffered entries are flushed
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
