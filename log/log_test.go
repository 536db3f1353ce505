package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogNotInitialized(t *testing.T) {
	Info("Test log.Info", " value is ", 10)
	Infof("Test log.Infof %d", 10)
	Infow("Test log.Infow", "value", 10)
	Debugf("Test log.Debugf %d", 10)
	Error("Test log.Error", " value is ", 10)
	Errorf("Test log.Errorf %d", 10)
	Errorw("Test log.Errorw", "value", 10)
	Warnf("Test log.Warnf %d", 10)
	Warnw("Test log.Warnw", "value", 10)
}

func TestLog(t *testing.T) {
	cfg := Config{
		Environment: EnvironmentDevelopment,
		Level:       "debug",
		Outputs:     []string{"stderr"},
	}

	Init(cfg)

	Info("Test log.Info", " value is ", 10)
	Infof("Test log.Infof %d", 10)
	Infow("Test log.Infow", "value", 10)
	Debugf("Test log.Debugf %d", 10)
	Error("Test log.Error", " value is ", errors.New("boom"))
	Errorw("Test log.Errorw", "err", errors.New("boom"))

	logger := WithFields("module", "test")
	logger.Infof("module logger %s", "works")
	require.NotNil(t, logger.GetSugaredLogger())
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, _, err := NewLogger(Config{Environment: EnvironmentProduction, Level: "verbose"})
	require.Error(t, err)
}

func TestAppendStackTraceMaybeKV(t *testing.T) {
	msg := appendStackTraceMaybeKV("message", []interface{}{"err", errors.New("boom")})
	require.Contains(t, msg, "message: boom")

	msg = appendStackTraceMaybeKV("message", []interface{}{"value", 1})
	require.Equal(t, "message", msg)
}
