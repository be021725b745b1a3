// -- internal/observability/logger_test.go --
package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/linkscout/internal/config"
)

func TestGetLogger_BeforeInitializationFallsBack(t *testing.T) {
	// The global is untouched at this point in the test binary only if
	// InitializeLogger has not run yet; either way a usable logger comes back.
	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Debug("fallback logger is usable")
}

func TestInitializeLogger_Idempotent(t *testing.T) {
	cfg := config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "linkscout-test",
		LogFile:     t.TempDir() + "/test.log",
		MaxSize:     1,
		MaxBackups:  1,
		MaxAge:      1,
	}

	InitializeLogger(cfg)
	first := GetLogger()
	require.NotNil(t, first)

	// A second initialization must not replace the logger.
	InitializeLogger(config.LoggerConfig{Level: "error", Format: "console", ServiceName: "other"})
	assert.Same(t, first, GetLogger())

	first.Info("structured entry")
	Sync()
}
