package capture

import "github.com/ghQQ/capturectl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidCounter = errors.ErrorCode("capture_invalid_counter")
	ErrInvalidSignal  = errors.ErrorCode("capture_invalid_signal")

	// Measurement Errors
	ErrMissedWrap = errors.ErrorCode("capture_missed_wrap")

	// Source Errors
	ErrNoSignal     = errors.ErrorCode("capture_no_signal")
	ErrSourceClosed = errors.ErrorCode("capture_source_closed")
)

func errFactory() errors.Factory {
	return errors.New()
}
