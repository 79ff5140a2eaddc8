// Package amp holds the static configuration of the analog inverting
// amplifier companion program. The amplifier is a fixed resistor-ladder
// gain stage with no runtime logic, so it is represented as a
// configuration table plus the ideal transfer function it implements.
package amp

import "fmt"

// Config describes one opamp gain configuration.
type Config struct {
	// Unit is the opamp instance the configuration targets.
	Unit string
	// Gain is the closed-loop gain -Res2/Res1 set by the internal
	// resistor ladder.
	Gain float64
	// ResistorSelect names the ladder tap (Res2 = 3*Res1 for a gain
	// of -3).
	ResistorSelect string
	// InputMux routes the ladder input to the negative pad.
	InputMux string
	// OutputRoute is the analog port the amplifier output drives.
	OutputRoute string
}

// Setting is one row of the register configuration dump.
type Setting struct {
	Field   string
	Value   string
	Meaning string
}

// Inverting returns the fixed inverting amplifier configuration: OPA1
// with the resistor ladder set for a gain of -3, input on the negative
// pad and output routed to the analog port.
func Inverting() Config {
	return Config{
		Unit:           "OPA1",
		Gain:           -3,
		ResistorSelect: "Res2 = 3*Res1",
		InputMux:       "negative pad",
		OutputRoute:    "APORT2YCH14 (PA14)",
	}
}

// OutputVoltage returns the ideal amplifier output for the given input
// and positive reference voltages: Vout = gain*Vin + (1-gain)*Vpos.
func (c Config) OutputVoltage(vin, vpos float64) float64 {
	return c.Gain*vin + (1-c.Gain)*vpos
}

// Table returns the configuration as a printable settings table.
func (c Config) Table() []Setting {
	return []Setting{
		{"unit", c.Unit, "opamp instance"},
		{"gain", fmt.Sprintf("%g", c.Gain), "closed-loop gain"},
		{"resistor_select", c.ResistorSelect, "internal ladder tap"},
		{"input_mux", c.InputMux, "ladder input routing"},
		{"output_route", c.OutputRoute, "output port routing"},
	}
}
