package logger

import (
	"go.uber.org/zap"
)

// Log defaults to a nop logger so packages can log before Init runs (and
// under go test without any setup).
var Log = zap.NewNop().Sugar()

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
