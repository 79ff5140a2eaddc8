package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for measurement storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one recorded period measurement
type Snapshot struct {
	Timestamp time.Time
	Period    PeriodMetrics
	Signal    SignalMetrics
	Counter   CounterMetrics
}

// Domain value objects
type PeriodMetrics struct {
	// Current and Average are in microseconds.
	Current uint32
	Average uint32
}

type SignalMetrics struct {
	FrequencyHz uint32
}

type CounterMetrics struct {
	Edge     uint32
	Wraps    uint32
	RawTicks uint64
}
