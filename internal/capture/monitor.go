package capture

import "sync"

// Monitor keeps a rolling window of recent period measurements so the
// daemon can report a smoothed period and the derived signal
// frequency.
type Monitor struct {
	mu      sync.RWMutex
	window  []uint32
	size    int
	count   uint64
	wraps   uint64
	average uint32
}

func NewMonitor(size int) *Monitor {
	if size < 1 {
		size = 1
	}

	return &Monitor{size: size}
}

// Update folds a measurement into the window and returns the new
// average period in microseconds.
func (m *Monitor) Update(meas Measurement) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.window = append(m.window, meas.Period)
	if len(m.window) > m.size {
		m.window = m.window[1:]
	}

	sum := uint64(0)
	for _, p := range m.window {
		sum += uint64(p)
	}
	m.average = uint32(sum / uint64(len(m.window)))

	m.count++
	m.wraps += uint64(meas.Wraps)

	return m.average
}

// AveragePeriod returns the average period over the window in
// microseconds.
func (m *Monitor) AveragePeriod() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.average
}

// Frequency returns the signal frequency in Hz derived from the
// average period, or 0 while no non-zero period has been observed.
func (m *Monitor) Frequency() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.average == 0 {
		return 0
	}

	return uint32(microsecondsPerSecond / uint64(m.average))
}

// Count returns the total number of measurements observed.
func (m *Monitor) Count() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Wraps returns the total number of counter wraps observed.
func (m *Monitor) Wraps() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wraps
}
