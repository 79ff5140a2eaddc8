package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghQQ/capturectl/internal/amp"
	"github.com/ghQQ/capturectl/internal/capture"
	"github.com/ghQQ/capturectl/internal/config"
	"github.com/ghQQ/capturectl/internal/errors"
	"github.com/ghQQ/capturectl/internal/logger"
	"github.com/ghQQ/capturectl/internal/pid"
	"github.com/ghQQ/capturectl/internal/telemetry"
)

var (
	cfg       *config.Config
	source    capture.Source
	calc      *capture.PeriodCalculator
	mon       *capture.Monitor
	collector telemetry.Collector
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	debug := cfg.LogLevel == config.LogLevelDebug.String()
	verbose := cfg.LogLevel == config.LogLevelInfo.String()
	logger.Init(debug, verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")

	counter := capture.CounterConfig{
		Top:          cfg.CounterTop,
		ReloadAdjust: cfg.ReloadAdjust,
		ClockMHz:     cfg.ClockMHz,
		Prescale:     cfg.Prescale,
	}

	source, err = capture.NewSimSource(capture.SimConfig{
		SignalHz:    cfg.SignalHz,
		PollTimeout: time.Duration(cfg.PollTimeoutMS) * time.Millisecond,
		Counter:     counter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize capture source")
	}

	calc, err = capture.NewPeriodCalculator(counter)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize period calculator")
	}

	mon = capture.NewMonitor(cfg.Window)
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer pid.Remove()
	defer source.Close()

	telemetryCfg := telemetry.DefaultConfig()
	telemetryCfg.Enabled = cfg.Telemetry && !cfg.Monitor
	telemetryCfg.DBPath = cfg.TelemetryDB

	var err error
	collector, err = telemetry.NewService(telemetryCfg, logger.L())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}()

	if cfg.AmpTable {
		logAmpTable()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := loop(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

func loop(ctx context.Context) error {
	logger.Info().
		Uint32("signal_hz", cfg.SignalHz).
		Uint32("counter_top", cfg.CounterTop).
		Msg("Measuring input signal period...")

	for {
		ev, err := source.WaitForEdge(ctx)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				return nil
			case errors.CodeOf(err) == capture.ErrNoSignal:
				logger.Warn().
					Int("poll_timeout_ms", cfg.PollTimeoutMS).
					Msg("No capture event within poll timeout")
				continue
			default:
				return errors.New().Wrap(errors.ErrReadCapture, err)
			}
		}

		// The capture carries its own wrap count; any wraps beyond the
		// first are accounted before the calculation consumes the flag.
		for w := uint32(1); w < ev.Wraps; w++ {
			calc.NoteOverflow()
		}

		m, err := calc.Compute(ev.Edge, ev.Wraps > 0)
		if err != nil {
			logger.Warn().Err(err).Uint32("edge", ev.Edge).Msg("Discarding inconsistent measurement")
			continue
		}

		averagePeriod := mon.Update(m)
		logMeasurement(m, averagePeriod)

		if err := collector.Record(ctx, snapshot(m, averagePeriod)); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Msg("Failed to record telemetry")
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func snapshot(m capture.Measurement, averagePeriod uint32) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Timestamp: time.Now(),
		Period:    telemetry.PeriodMetrics{Current: m.Period, Average: averagePeriod},
		Signal:    telemetry.SignalMetrics{FrequencyHz: mon.Frequency()},
		Counter:   telemetry.CounterMetrics{Edge: m.Edge, Wraps: m.Wraps, RawTicks: m.RawTicks},
	}
}

func logMeasurement(m capture.Measurement, averagePeriod uint32) {
	if cfg.LogLevel == config.LogLevelDebug.String() {
		logger.Debug().
			Uint32("period_us", m.Period).
			Uint32("average_period_us", averagePeriod).
			Uint64("raw_ticks", m.RawTicks).
			Uint32("wraps", m.Wraps).
			Uint32("edge", m.Edge).
			Uint32("frequency_hz", mon.Frequency()).
			Uint64("measurements", mon.Count()).
			Uint64("total_wraps", mon.Wraps()).
			Bool("monitor", cfg.Monitor).
			Msg("")
	} else {
		logger.Info().
			Uint32("period_us", m.Period).
			Uint32("average_period_us", averagePeriod).
			Uint32("frequency_hz", mon.Frequency()).
			Msg("")
	}
}

func logAmpTable() {
	for _, s := range amp.Inverting().Table() {
		logger.Info().
			Str("field", s.Field).
			Str("value", s.Value).
			Str("meaning", s.Meaning).
			Msg("Amplifier configuration")
	}
}
