package capture

import "context"

// Capture is one latched edge from a capture source. The overflow
// indication has already been detected and acknowledged by the source;
// consumers only account for it.
type Capture struct {
	// Edge is the free-running counter value latched at the edge.
	Edge uint32
	// Wraps is the number of full counter wraps the source observed
	// since the previous capture. Zero means no overflow occurred.
	Wraps uint32
}

// Source delivers capture events from a timer/capture facility. A
// polled status register, an interrupt handler, or a simulation can
// all sit behind this interface.
type Source interface {
	// WaitForEdge blocks until the next capture event is latched.
	// It returns the context error on cancellation and ErrNoSignal
	// when no edge arrives within the source's poll timeout.
	WaitForEdge(ctx context.Context) (Capture, error)

	// Counter describes the free-running counter behind the source.
	Counter() CounterConfig

	Close() error
}

// CounterConfig describes the free-running counter a calculator
// measures against. Values are fixed for the lifetime of the program.
type CounterConfig struct {
	// Top is the value at which the counter wraps back to zero.
	Top uint32
	// ReloadAdjust corrects for the counter's reload timing relative
	// to its overflow flag. The modeled timer block needs 2; other
	// counter hardware must re-derive this from its own reload and
	// flag timing.
	ReloadAdjust uint32
	// ClockMHz is the counter input clock in MHz.
	ClockMHz uint32
	// Prescale is the prescaler exponent applied to the input clock.
	Prescale uint32
}

// DefaultCounter returns the counter configuration of the modeled
// timer block: 16-bit counter clocked at 19 MHz with no prescaling.
func DefaultCounter() CounterConfig {
	return CounterConfig{
		Top:          0xFFFF,
		ReloadAdjust: 2,
		ClockMHz:     19,
		Prescale:     0,
	}
}

// TickRate returns the counter rate in ticks per microsecond.
func (c CounterConfig) TickRate() uint32 {
	return c.ClockMHz << c.Prescale
}

// WrapTicks returns the tick span one full counter wrap contributes to
// an elapsed-time calculation.
func (c CounterConfig) WrapTicks() uint64 {
	return uint64(c.Top) + uint64(c.ReloadAdjust)
}

func (c CounterConfig) Validate() error {
	if c.Top == 0 {
		return errFactory().WithMessage(ErrInvalidCounter, "counter top must be non-zero")
	}
	if c.TickRate() == 0 {
		return errFactory().WithMessage(ErrInvalidCounter, "counter tick rate must be non-zero")
	}

	return nil
}
