package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

// LoadAnalysis reads a track analysis from a .json, .yaml or .yml file.
// Both formats use the same field names as the HTTP API.
func LoadAnalysis(path string) (domain.TrackAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// Round-trip through JSON so one set of struct tags serves both formats.
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.TrackAnalysis{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return domain.TrackAnalysis{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
	default:
		return domain.TrackAnalysis{}, fmt.Errorf("%s: unsupported file type (want .json, .yaml or .yml)", path)
	}

	var a domain.TrackAnalysis
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return domain.TrackAnalysis{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}
