package telemetry

import "github.com/ghQQ/capturectl/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/capturectl/telemetry.db"

	defaultBatchSize    = 32
	defaultBatchTimeout = 5
)

type Config struct {
	Enabled bool
	DBPath  string
	// BatchSize is the number of buffered snapshots that triggers a
	// flush. Zero flushes every snapshot immediately.
	BatchSize int
	// BatchTimeout flushes any buffered snapshots after this many
	// seconds regardless of batch size.
	BatchTimeout int
}

func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		DBPath:       defaultDBPath,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if telemetry is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.New(ErrInvalidConfig)
	}

	return nil
}
