// =============================================================================
// CSV to QDC Codebook Converter - Logging
// =============================================================================
//
// The converter logs to stderr with a console encoder. Each project run also
// appends its warnings and errors to <errors>/<project>.txt, so anomalies of
// one project never end up in another project's log.
//
//   base logger (stderr, configured level)
//        │
//        └── ForProject ──► tee ──► stderr
//                               └─► <errors>/<project>.txt (warn and above)
//
// =============================================================================

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// encoderConfig is shared by the stderr and file cores.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// New builds the base logger writing to stderr.
//
// PARAMETERS:
//   - level: A zap level name such as "debug", "info" or "warn".
//
// RETURNS:
//   - The logger.
//   - An error if the level is unknown.
func New(level string) (*zap.Logger, error) {
	return NewWithSink(level, zapcore.Lock(os.Stderr))
}

// NewWithSink builds a base logger writing to sink.
func NewWithSink(level string, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, lvl)
	return zap.New(core), nil
}

// ForProject returns a logger that writes to base and appends warnings and
// errors to the project's error log file.
//
// RETURNS:
//   - The project logger. Callers attach their own "project" field.
//   - A close function that syncs and releases the log file.
//   - An error if the log file cannot be opened.
func ForProject(base *zap.Logger, path string) (*zap.Logger, func() error, error) {
	if base == nil {
		base = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create error log directory: %w", err)
	}

	// zap.Open appends to existing files.
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open error log %s: %w", path, err)
	}

	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, zapcore.WarnLevel)

	logger := base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))

	closeFn := func() error {
		err := sink.Sync()
		closeSink()
		if err != nil {
			return fmt.Errorf("failed to sync error log %s: %w", path, err)
		}
		return nil
	}

	return logger, closeFn, nil
}
