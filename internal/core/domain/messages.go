package domain

import "fmt"

// Message renders a finding as English prose for display.
func (f Finding) Message() string {
	switch f.Code {
	case CodeInsufficientInput:
		return "Need at least 2 songs"
	case CodeKeyMatch:
		return "Perfect harmonic match"
	case CodeKeyDistance:
		return fmt.Sprintf("Keys are %d steps apart on the Camelot wheel", f.intParam("distance"))
	case CodeTuningMismatch:
		return fmt.Sprintf("Tuning differs by %.0f cents", f.floatParam("cents"))
	case CodeTempoDifference:
		return fmt.Sprintf("Tempo difference of %.1f BPM", f.floatParam("bpm_diff"))
	case CodeSpectralBalance:
		return fmt.Sprintf("Spectral balance differs by %.2f", f.floatParam("balance_diff"))
	case CodeEnergyDifference:
		return fmt.Sprintf("Energy levels differ by %.0f%%", f.floatParam("diff")*100)
	case CodeShiftKey:
		if name, ok := f.Params["target_name"].(string); ok {
			return fmt.Sprintf("Pitch-shift one track toward %s (%s) for a more compatible key", f.Params["target_key"], name)
		}
		return "Pitch-shift one track toward a more compatible key"
	case CodeTimeStretch:
		return fmt.Sprintf("Time-stretch to a shared tempo or add a transition section (%.1f BPM apart)", f.floatParam("bpm_diff"))
	case CodeEQConflict:
		if band, ok := f.Params["band"].(string); ok {
			return fmt.Sprintf("EQ conflict in the %s band; cut it on one track", band)
		}
		return "EQ conflict; carve space for each track"
	case CodeEnergyBridge:
		return "Large energy gap; bridge it with a build-up or breakdown"
	}
	return string(f.Code)
}

// Messages renders a list of findings.
func Messages(fs []Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Message())
	}
	return out
}

func (f Finding) floatParam(key string) float64 {
	switch v := f.Params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (f Finding) intParam(key string) int {
	switch v := f.Params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
