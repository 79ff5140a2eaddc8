package capture

import (
	"context"
	"sync"
	"time"

	"github.com/ghQQ/capturectl/internal/logger"
)

const microsecondsPerSecond = 1_000_000

// SimConfig configures a simulated capture source.
type SimConfig struct {
	// SignalHz is the frequency of the synthesized input signal.
	SignalHz uint32
	// PollTimeout bounds how long WaitForEdge waits for an edge
	// before reporting ErrNoSignal. Zero disables the timeout.
	PollTimeout time.Duration
	// Counter describes the virtual free-running counter.
	Counter CounterConfig
}

// SimSource synthesizes capture events for a periodic input signal
// against a virtual free-running counter. It stands in for a hardware
// timer/capture block: edges are paced in wall-clock time at the
// configured signal frequency, and the latched counter values advance
// along the exact tick span one signal period covers, wrapping at the
// counter modulus.
type SimSource struct {
	cfg         SimConfig
	periodTicks uint64

	mu       sync.Mutex
	absTicks uint64
	closed   bool
}

func NewSimSource(cfg SimConfig) (*SimSource, error) {
	if err := cfg.Counter.Validate(); err != nil {
		return nil, err
	}
	if cfg.SignalHz == 0 {
		return nil, errFactory().WithMessage(ErrInvalidSignal, "signal frequency must be non-zero")
	}

	periodTicks := uint64(cfg.Counter.TickRate()) * microsecondsPerSecond / uint64(cfg.SignalHz)
	if periodTicks == 0 {
		// Below the counter's resolution nothing sensible can be
		// latched. The modeled hardware caps out around 333 kHz.
		return nil, errFactory().WithData(ErrInvalidSignal, struct {
			SignalHz uint32
			TickRate uint32
		}{cfg.SignalHz, cfg.Counter.TickRate()})
	}

	logger.Debug().
		Uint32("signal_hz", cfg.SignalHz).
		Uint64("period_ticks", periodTicks).
		Uint32("counter_top", cfg.Counter.Top).
		Msg("Simulated capture source initialized")

	return &SimSource{
		cfg:         cfg,
		periodTicks: periodTicks,
	}, nil
}

func (s *SimSource) Counter() CounterConfig {
	return s.cfg.Counter
}

// WaitForEdge blocks for one signal period and returns the next
// latched edge. When the signal period exceeds the poll timeout the
// wait is cut short and ErrNoSignal is returned, modeling an absent or
// stalled input signal.
func (s *SimSource) WaitForEdge(ctx context.Context) (Capture, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Capture{}, errFactory().New(ErrSourceClosed)
	}
	s.mu.Unlock()

	interval := time.Second / time.Duration(s.cfg.SignalHz)
	if s.cfg.PollTimeout > 0 && interval > s.cfg.PollTimeout {
		if err := sleep(ctx, s.cfg.PollTimeout); err != nil {
			return Capture{}, err
		}
		return Capture{}, errFactory().New(ErrNoSignal)
	}

	if err := sleep(ctx, interval); err != nil {
		return Capture{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Capture{}, errFactory().New(ErrSourceClosed)
	}

	wrap := s.cfg.Counter.WrapTicks()
	prev := s.absTicks
	s.absTicks += s.periodTicks

	return Capture{
		Edge:  uint32(s.absTicks % wrap),
		Wraps: uint32(s.absTicks/wrap - prev/wrap),
	}, nil
}

func (s *SimSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
