package analysis

// analyzeRequest is the body posted to {base}/analyze.
type analyzeRequest struct {
	SongID   string `json:"song_id"`
	AudioURL string `json:"audio_url"`
}

// analysisResponse mirrors the spectral-analysis payload. Fields the scorer
// does not use (beat positions, chromagram, diagnostics) are left out.
type analysisResponse struct {
	Version         string              `json:"version"`
	BeatGrid        beatGrid            `json:"beat_grid"`
	Key             keyEstimate         `json:"key"`
	Energy          *float64            `json:"energy"`
	Brightness      float64             `json:"brightness"`
	Rhythm          rhythmDescriptor    `json:"rhythm"`
	SpectralBalance spectralDescriptor  `json:"spectral_balance"`
	Roughness       roughnessDescriptor `json:"roughness"`
	Diagnostics     struct {
		Warnings []string `json:"warnings"`
	} `json:"diagnostics"`
}

type beatGrid struct {
	BPM           float64 `json:"bpm"`
	BPMConfidence float64 `json:"bpm_confidence"`
}

type keyEstimate struct {
	Name       string  `json:"name"`
	Camelot    *string `json:"camelot"`
	CentsOff   float64 `json:"cents_off"`
	Confidence float64 `json:"confidence"`
}

type rhythmDescriptor struct {
	PulseClarity       float64 `json:"pulse_clarity"`
	RhythmicComplexity float64 `json:"rhythmic_complexity"`
}

type spectralDescriptor struct {
	Low  float64 `json:"low_freq_content"`
	Mid  float64 `json:"mid_freq_content"`
	High float64 `json:"high_freq_content"`
}

type roughnessDescriptor struct {
	Estimated float64 `json:"estimated_roughness"`
}
