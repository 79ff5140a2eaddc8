package capture

import "math"

// Measurement is the result of one period calculation.
type Measurement struct {
	// Period is the elapsed time between the previous and current
	// capture edges, truncated to whole microseconds.
	Period uint32
	// RawTicks is the elapsed time in counter ticks.
	RawTicks uint64
	// Wraps is the number of counter wraps consumed by this
	// measurement.
	Wraps uint32
	// Edge is the counter value this measurement ended on.
	Edge uint32
}

// PeriodCalculator computes the elapsed time between consecutive
// capture edges on a free-running counter, compensating for counter
// overflow. Its two fields of persistent state reflect the most recent
// calculation; every captured edge must be fed through Compute or the
// next result is silently wrong.
//
// The calculator is single-consumer: it expects the reference polled
// arrangement where one loop alternates between waiting for an edge
// and computing. A driver that accounts wraps from interrupt context
// must serialize NoteOverflow and Compute itself.
type PeriodCalculator struct {
	cfg       CounterConfig
	lastEdge  uint32
	overflows uint32
}

func NewPeriodCalculator(cfg CounterConfig) (*PeriodCalculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &PeriodCalculator{cfg: cfg}, nil
}

// NoteOverflow records one counter wrap observed between captures.
// Compute folds any number of recorded wraps into its next result.
func (p *PeriodCalculator) NoteOverflow() {
	p.overflows++
}

// Compute returns the period between the previously recorded edge and
// edge. When overflowed is true one counter wrap is accounted in
// addition to any wraps recorded via NoteOverflow.
//
// The persistent state is updated unconditionally, so a failed
// measurement does not corrupt the next one. ErrMissedWrap is returned
// when the edge reading is inconsistent with the recorded wrap count
// (the elapsed tick span would be negative).
func (p *PeriodCalculator) Compute(edge uint32, overflowed bool) (Measurement, error) {
	if overflowed {
		p.overflows++
	}

	wraps := p.overflows
	span := int64(uint64(wraps)*p.cfg.WrapTicks()) - int64(p.lastEdge) + int64(edge)

	p.lastEdge = edge
	p.overflows = 0

	if span < 0 {
		return Measurement{Edge: edge, Wraps: wraps}, errFactory().WithData(ErrMissedWrap, struct {
			Edge  uint32
			Wraps uint32
		}{edge, wraps})
	}

	raw := uint64(span)
	period := raw / uint64(p.cfg.TickRate())
	if period > math.MaxUint32 {
		period = math.MaxUint32
	}

	return Measurement{
		Period:   uint32(period),
		RawTicks: raw,
		Wraps:    wraps,
		Edge:     edge,
	}, nil
}

// LastEdge returns the counter value of the most recent calculation.
func (p *PeriodCalculator) LastEdge() uint32 {
	return p.lastEdge
}

// Counter returns the counter configuration the calculator was built
// with.
func (p *PeriodCalculator) Counter() CounterConfig {
	return p.cfg
}
