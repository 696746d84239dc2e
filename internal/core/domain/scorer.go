package domain

import "math"

// Thresholds at which a dimension produces a suggestion.
const (
	keyShiftDistance    = 2
	tuningToleranceCent = 15.0
	tuningPenalty       = 10.0
	tempoStretchBPM     = 10.0
	eqConflictBalance   = 70.0
	energyBridgeDiff    = 0.4
)

// SubScore is the result of one dimension before weighting.
type SubScore struct {
	Dimension   Dimension
	Score       float64
	Reasons     []Finding
	Suggestions []Finding
}

// Scorer computes mashup compatibility. It is a plain value: callers build
// one per configuration and may share it across goroutines.
type Scorer struct {
	Weights Weights
}

// NewScorer returns a scorer using DefaultWeights.
func NewScorer() Scorer {
	return Scorer{Weights: DefaultWeights()}
}

// Score rates the first two analyses. Extra analyses are ignored. With fewer
// than two it returns a zero score and an INSUFFICIENT_INPUT reason rather
// than an error, so callers always have something to render.
func (s Scorer) Score(analyses []TrackAnalysis) Result {
	if len(analyses) < 2 {
		return Result{
			Score:       0,
			Reasons:     []Finding{{Code: CodeInsufficientInput}},
			Suggestions: []Finding{},
		}
	}
	return s.ScorePair(analyses[0], analyses[1])
}

// ScorePair rates two analyses.
func (s Scorer) ScorePair(a, b TrackAnalysis) Result {
	subs := []SubScore{
		HarmonicScore(a.Key, b.Key),
		RhythmicScore(a, b),
		SpectralScore(a, b),
		EnergyScore(a, b),
	}

	res := Result{
		Reasons:     []Finding{},
		Suggestions: []Finding{},
	}
	var total float64
	for _, sub := range subs {
		total += sub.Score * s.Weights.Get(sub.Dimension)
		res.Reasons = append(res.Reasons, sub.Reasons...)
		res.Suggestions = append(res.Suggestions, sub.Suggestions...)
	}
	res.Breakdown = Breakdown{
		Harmonic: subs[0].Score,
		Rhythmic: subs[1].Score,
		Spectral: subs[2].Score,
		Energy:   subs[3].Score,
	}
	if finite(total) {
		res.Score = int(math.Round(total))
	}
	return res
}

// HarmonicScore compares keys by their distance on the Camelot wheel.
func HarmonicScore(a, b Key) SubScore {
	sub := SubScore{Dimension: Harmonic}

	if sameKey(a, b) {
		sub.Score = 100
		sub.Reasons = append(sub.Reasons, finding(CodeKeyMatch, Harmonic, nil))
	} else {
		codeA, codeB := a.CamelotCode(), b.CamelotCode()
		d := CamelotDistance(codeA, codeB)
		sub.Score = math.Max(0, 100-float64(d)*15)
		sub.Reasons = append(sub.Reasons, finding(CodeKeyDistance, Harmonic, map[string]any{
			"distance": d,
			"from":     codeA,
			"to":       codeB,
		}))

		if d > keyShiftDistance {
			params := map[string]any{"distance": d}
			anchor, other := codeA, codeB
			if _, _, ok := ParseCamelot(anchor); !ok {
				anchor, other = codeB, codeA
			}
			if target := nearestCompatibleKey(anchor, other); target != "" {
				params["target_key"] = target
				if name, ok := CamelotName(target); ok {
					params["target_name"] = name
				}
			}
			sub.Suggestions = append(sub.Suggestions, finding(CodeShiftKey, Harmonic, params))
		}
	}

	// NaN offsets compare false and so carry no penalty.
	if cents := math.Abs(a.TuningOffsetCents - b.TuningOffsetCents); cents > tuningToleranceCent {
		sub.Score = math.Max(0, sub.Score-tuningPenalty)
		sub.Reasons = append(sub.Reasons, finding(CodeTuningMismatch, Harmonic, numbers("cents", cents)))
	}

	sub.Score = clampScore(sub.Score)
	return sub
}

// RhythmicScore weighs tempo agreement most, then pulse clarity and
// rhythmic complexity. Tempo differences are penalised quadratically.
func RhythmicScore(a, b TrackAnalysis) SubScore {
	sub := SubScore{Dimension: Rhythmic}

	d := math.Abs(a.TempoBPM - b.TempoBPM)
	bpmScore := floorZero(100 - d*5 - d*d*0.1)
	clarityScore := (unitInterval(a.Rhythm.PulseClarity) + unitInterval(b.Rhythm.PulseClarity)) / 2 * 100
	complexityScore := floorZero(100 - math.Abs(a.Rhythm.Complexity-b.Rhythm.Complexity)*20)

	sub.Score = clampScore(bpmScore*0.6 + clarityScore*0.3 + complexityScore*0.1)
	sub.Reasons = append(sub.Reasons, finding(CodeTempoDifference, Rhythmic, numbers("bpm_diff", d)))
	if d > tempoStretchBPM {
		sub.Suggestions = append(sub.Suggestions, finding(CodeTimeStretch, Rhythmic, numbers("bpm_diff", d)))
	}
	return sub
}

// SpectralScore compares frequency balance, brightness and roughness.
func SpectralScore(a, b TrackAnalysis) SubScore {
	sub := SubScore{Dimension: Spectral}

	low := math.Abs(a.SpectralBalance.Low - b.SpectralBalance.Low)
	mid := math.Abs(a.SpectralBalance.Mid - b.SpectralBalance.Mid)
	high := math.Abs(a.SpectralBalance.High - b.SpectralBalance.High)
	balanceDiff := low + mid + high

	balanceScore := floorZero(100 - balanceDiff*50)
	brightnessScore := floorZero(100 - math.Abs(a.Brightness-b.Brightness)*200)
	roughnessScore := floorZero(100 - (a.Roughness+b.Roughness)*2)

	sub.Score = clampScore(balanceScore*0.5 + brightnessScore*0.3 + roughnessScore*0.2)
	sub.Reasons = append(sub.Reasons, finding(CodeSpectralBalance, Spectral, numbers("balance_diff", balanceDiff)))
	if balanceScore < eqConflictBalance {
		params := numbers("balance_score", balanceScore)
		if band := widestBand(low, mid, high); band != "" {
			params["band"] = band
		}
		sub.Suggestions = append(sub.Suggestions, finding(CodeEQConflict, Spectral, params))
	}
	return sub
}

// EnergyScore compares overall loudness/intensity.
func EnergyScore(a, b TrackAnalysis) SubScore {
	sub := SubScore{Dimension: Energy}

	d := math.Abs(a.Energy - b.Energy)
	sub.Score = clampScore(floorZero(100 - d*150))
	sub.Reasons = append(sub.Reasons, finding(CodeEnergyDifference, Energy, numbers("diff", d)))
	if d > energyBridgeDiff {
		sub.Suggestions = append(sub.Suggestions, finding(CodeEnergyBridge, Energy, numbers("diff", d)))
	}
	return sub
}

func sameKey(a, b Key) bool {
	pa, okA := ParsePitchClass(a.Tonic)
	pb, okB := ParsePitchClass(b.Tonic)
	return okA && okB && pa == pb && a.Mode == b.Mode
}

func widestBand(low, mid, high float64) string {
	band, widest := "", 0.0
	for _, c := range []struct {
		name string
		v    float64
	}{{"low", low}, {"mid", mid}, {"high", high}} {
		if finite(c.v) && c.v > widest {
			band, widest = c.name, c.v
		}
	}
	return band
}

func finding(code Code, d Dimension, params map[string]any) Finding {
	return Finding{Code: code, Dimension: d, Params: params}
}

// numbers builds a params map, dropping non-finite values so results always
// encode as JSON.
func numbers(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		v, _ := kv[i+1].(float64)
		if key != "" && finite(v) {
			m[key] = v
		}
	}
	return m
}

// floorZero is max(0, v) with NaN mapped to 0.
func floorZero(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clampScore(v float64) float64 {
	return math.Min(100, floorZero(v))
}

func unitInterval(v float64) float64 {
	return math.Min(1, floorZero(v))
}
