package logging

import (
	"go.uber.org/zap"
)

// Logger is the process-wide logger used by the SDK. It defaults to a
// production zap logger and can be replaced with SetLogger before the
// SDK is used.
var Logger *zap.Logger

func init() {
	logger, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on invalid config, which we don't pass
		panic(err)
	}
	Logger = logger
}

// SetLogger replaces the SDK-wide logger. Passing nil silences all SDK
// logging.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	Logger = logger
}
