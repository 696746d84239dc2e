package domain

// Code identifies a reason or suggestion independently of its wording.
type Code string

const (
	CodeInsufficientInput Code = "INSUFFICIENT_INPUT"
	CodeKeyMatch          Code = "KEY_MATCH"
	CodeKeyDistance       Code = "KEY_DISTANCE"
	CodeTuningMismatch    Code = "TUNING_MISMATCH"
	CodeTempoDifference   Code = "TEMPO_DIFFERENCE"
	CodeSpectralBalance   Code = "SPECTRAL_BALANCE"
	CodeEnergyDifference  Code = "ENERGY_DIFFERENCE"

	CodeShiftKey     Code = "SHIFT_KEY"
	CodeTimeStretch  Code = "TIME_STRETCH"
	CodeEQConflict   Code = "EQ_CONFLICT"
	CodeEnergyBridge Code = "ENERGY_BRIDGE"
)

// Finding is a reason or suggestion: a stable code, the dimension it came
// from, and the numbers a presentation layer needs to word it.
type Finding struct {
	Code      Code           `json:"code"`
	Dimension Dimension      `json:"dimension,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
}

// Breakdown holds the unweighted sub-scores.
type Breakdown struct {
	Harmonic float64 `json:"harmonic"`
	Rhythmic float64 `json:"rhythmic"`
	Spectral float64 `json:"spectral"`
	Energy   float64 `json:"energy"`
}

// Result is the outcome of one compatibility check. It is built fresh for
// every call and never stored.
type Result struct {
	Score       int       `json:"score"`
	Breakdown   Breakdown `json:"breakdown"`
	Reasons     []Finding `json:"reasons"`
	Suggestions []Finding `json:"suggestions"`
}

// HasCode reports whether any finding in fs carries code.
func HasCode(fs []Finding, code Code) bool {
	for _, f := range fs {
		if f.Code == code {
			return true
		}
	}
	return false
}
