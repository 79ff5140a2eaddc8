package capture_test

import (
	"testing"

	"github.com/ghQQ/capturectl/internal/capture"
	"github.com/ghQQ/capturectl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCounter mirrors the reference configuration used throughout:
// 19 MHz clock, no prescaling (19 ticks/µs), top 999, reload adjust 2.
func testCounter() capture.CounterConfig {
	return capture.CounterConfig{
		Top:          999,
		ReloadAdjust: 2,
		ClockMHz:     19,
		Prescale:     0,
	}
}

func newCalculator(t *testing.T) *capture.PeriodCalculator {
	t.Helper()
	calc, err := capture.NewPeriodCalculator(testCounter())
	require.NoError(t, err)
	return calc
}

func TestComputeNoOverflow(t *testing.T) {
	calc := newCalculator(t)

	m, err := calc.Compute(19000, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(19000), m.RawTicks, "Expected 19000 raw ticks")
	assert.Equal(t, uint32(1000), m.Period, "Expected 1000 µs period")
	assert.Equal(t, uint32(0), m.Wraps)
}

func TestComputeSingleOverflow(t *testing.T) {
	calc := newCalculator(t)

	_, err := calc.Compute(950, false)
	require.NoError(t, err)

	m, err := calc.Compute(50, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), m.RawTicks, "Expected 1*(999+2) - 950 + 50 ticks")
	assert.Equal(t, uint32(5), m.Period, "Expected 101/19 µs truncated")
	assert.Equal(t, uint32(1), m.Wraps)
}

func TestComputeSameEdgeIsZero(t *testing.T) {
	calc := newCalculator(t)

	_, err := calc.Compute(487, false)
	require.NoError(t, err)

	m, err := calc.Compute(487, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), m.RawTicks)
	assert.Equal(t, uint32(0), m.Period, "Expected zero period for repeated edge")
}

func TestComputeCounterTopBoundary(t *testing.T) {
	calc := newCalculator(t)

	m, err := calc.Compute(999, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(999), m.RawTicks, "Expected raw ticks equal to counter top")
	assert.Equal(t, uint32(999/19), m.Period)
}

func TestComputeFormula(t *testing.T) {
	edges := []uint32{0, 1, 500, 999}
	for _, wraps := range []uint32{0, 1, 2, 3} {
		for _, prev := range edges {
			for _, cur := range edges {
				calc := newCalculator(t)
				_, err := calc.Compute(prev, false)
				require.NoError(t, err)

				for i := uint32(0); i < wraps; i++ {
					calc.NoteOverflow()
				}

				span := int64(wraps)*1001 - int64(prev) + int64(cur)
				m, err := calc.Compute(cur, false)
				if span < 0 {
					assert.Equal(t, capture.ErrMissedWrap, errors.CodeOf(err),
						"wraps=%d prev=%d cur=%d", wraps, prev, cur)
					continue
				}
				require.NoError(t, err, "wraps=%d prev=%d cur=%d", wraps, prev, cur)
				assert.Equal(t, uint64(span), m.RawTicks, "wraps=%d prev=%d cur=%d", wraps, prev, cur)
				assert.Equal(t, uint32(span/19), m.Period, "wraps=%d prev=%d cur=%d", wraps, prev, cur)
			}
		}
	}
}

func TestComputeAccumulatesWraps(t *testing.T) {
	// Wraps signaled across two measurements must account for the same
	// total tick span as one measurement with all wraps signaled.
	split, err := capture.NewPeriodCalculator(testCounter())
	require.NoError(t, err)
	_, err = split.Compute(950, false)
	require.NoError(t, err)

	split.NoteOverflow()
	m1, err := split.Compute(20, false)
	require.NoError(t, err)

	split.NoteOverflow()
	split.NoteOverflow()
	m2, err := split.Compute(10, false)
	require.NoError(t, err)

	single, err := capture.NewPeriodCalculator(testCounter())
	require.NoError(t, err)
	_, err = single.Compute(950, false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		single.NoteOverflow()
	}
	m, err := single.Compute(10, false)
	require.NoError(t, err)

	assert.Equal(t, m.RawTicks, m1.RawTicks+m2.RawTicks, "Expected equal total tick spans")
}

func TestComputeMissedWrapUpdatesState(t *testing.T) {
	calc := newCalculator(t)

	_, err := calc.Compute(500, false)
	require.NoError(t, err)

	// A lower reading with no wrap recorded is inconsistent.
	_, err = calc.Compute(100, false)
	require.Error(t, err)
	assert.Equal(t, capture.ErrMissedWrap, errors.CodeOf(err))
	assert.Equal(t, uint32(100), calc.LastEdge(), "Expected state update despite error")

	// The next measurement starts from the recorded edge.
	m, err := calc.Compute(195, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(95), m.RawTicks)
	assert.Equal(t, uint32(5), m.Period)
}

func TestNewPeriodCalculatorValidation(t *testing.T) {
	_, err := capture.NewPeriodCalculator(capture.CounterConfig{ClockMHz: 19})
	require.Error(t, err)
	assert.Equal(t, capture.ErrInvalidCounter, errors.CodeOf(err))

	_, err = capture.NewPeriodCalculator(capture.CounterConfig{Top: 999})
	require.Error(t, err)
	assert.Equal(t, capture.ErrInvalidCounter, errors.CodeOf(err))
}

func TestDefaultCounter(t *testing.T) {
	cfg := capture.DefaultCounter()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(19), cfg.TickRate())
	assert.Equal(t, uint64(0xFFFF+2), cfg.WrapTicks())
}
