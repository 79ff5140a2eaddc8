package telemetry_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghQQ/capturectl/internal/errors"
	"github.com/ghQQ/capturectl/internal/logger"
	"github.com/ghQQ/capturectl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(period uint32) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Timestamp: time.Now(),
		Period:    telemetry.PeriodMetrics{Current: period, Average: period},
		Signal:    telemetry.SignalMetrics{FrequencyHz: 1_000_000 / period},
		Counter:   telemetry.CounterMetrics{Edge: 42, Wraps: 1, RawTicks: uint64(period) * 19},
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	cfg := telemetry.Config{
		Enabled:      true,
		DBPath:       dbPath,
		BatchSize:    2,
		BatchTimeout: 60,
	}

	repo, err := telemetry.NewRepository(cfg, logger.L())
	require.NoError(t, err)

	// Two snapshots trigger a size flush, the third is flushed on close.
	require.NoError(t, repo.Record(testSnapshot(1000)))
	require.NoError(t, repo.Record(testSnapshot(500)))
	require.NoError(t, repo.Record(testSnapshot(250)))
	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM measurements").Scan(&count))
	assert.Equal(t, 3, count, "Expected all snapshots persisted")

	var period, frequency, wraps int64
	require.NoError(t, db.QueryRow(
		"SELECT period_us, frequency_hz, wraps FROM measurements ORDER BY id LIMIT 1",
	).Scan(&period, &frequency, &wraps))
	assert.Equal(t, int64(1000), period)
	assert.Equal(t, int64(1000), frequency)
	assert.Equal(t, int64(1), wraps)
}

func TestNewRepositoryRequiresDBPath(t *testing.T) {
	_, err := telemetry.NewRepository(telemetry.Config{Enabled: true}, logger.L())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrInvalidDBPath, errors.CodeOf(err))
}

func TestServiceDisabledIsNoop(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	svc, err := telemetry.NewService(telemetry.Config{Enabled: false, DBPath: dbPath}, logger.L())
	require.NoError(t, err)

	require.NoError(t, svc.Record(context.Background(), testSnapshot(100)))
	require.NoError(t, svc.Close())

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "Expected no database for disabled telemetry")
}

func TestServiceRejectsNilSnapshot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	svc, err := telemetry.NewService(telemetry.Config{
		Enabled:      true,
		DBPath:       dbPath,
		BatchSize:    1,
		BatchTimeout: 60,
	}, logger.L())
	require.NoError(t, err)
	defer svc.Close()

	err = svc.Record(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrInvalidSnapshot, errors.CodeOf(err))
}

func TestServiceHonorsCancelledContext(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	svc, err := telemetry.NewService(telemetry.Config{
		Enabled:      true,
		DBPath:       dbPath,
		BatchSize:    1,
		BatchTimeout: 60,
	}, logger.L())
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = svc.Record(ctx, testSnapshot(100))
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrOperationTimeout, errors.CodeOf(err))
}
