package capture_test

import (
	"testing"

	"github.com/ghQQ/capturectl/internal/capture"
	"github.com/stretchr/testify/assert"
)

func TestMonitorAverage(t *testing.T) {
	mon := capture.NewMonitor(3)

	assert.Equal(t, uint32(100), mon.Update(capture.Measurement{Period: 100}))
	assert.Equal(t, uint32(150), mon.Update(capture.Measurement{Period: 200}))
	assert.Equal(t, uint32(200), mon.Update(capture.Measurement{Period: 300}))

	// Window is full: the first measurement drops out.
	assert.Equal(t, uint32(300), mon.Update(capture.Measurement{Period: 400}))
	assert.Equal(t, uint32(300), mon.AveragePeriod())
	assert.Equal(t, uint64(4), mon.Count())
}

func TestMonitorFrequency(t *testing.T) {
	mon := capture.NewMonitor(5)
	assert.Equal(t, uint32(0), mon.Frequency(), "Expected no frequency before measurements")

	mon.Update(capture.Measurement{Period: 200})
	assert.Equal(t, uint32(5000), mon.Frequency(), "Expected 5 kHz for a 200 µs period")

	mon.Update(capture.Measurement{Period: 0})
	assert.Equal(t, uint32(10000), mon.Frequency(), "Expected frequency from 100 µs average")
}

func TestMonitorWraps(t *testing.T) {
	mon := capture.NewMonitor(2)
	mon.Update(capture.Measurement{Period: 10, Wraps: 3})
	mon.Update(capture.Measurement{Period: 10, Wraps: 1})
	assert.Equal(t, uint64(4), mon.Wraps())
}
