package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger = zap.NewNop()

// Init builds the process logger at the given level, falling back to Info
// when the level does not parse. Output goes to stdout with a console
// encoder; anything fancier belongs to the deployment, not the binary.
func Init(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		lvl,
	)

	log = zap.New(core, zap.AddCaller())
}

// L returns the process logger. Before Init it is a no-op logger, which
// keeps tests quiet.
func L() *zap.Logger {
	return log
}

func Sync() {
	_ = log.Sync()
}
