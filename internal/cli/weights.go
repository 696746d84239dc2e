package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

// ParseWeights parses "harmonic=0.5,energy=0.2". Dimensions left out are zero.
func ParseWeights(s string) (domain.Weights, error) {
	m := map[string]float64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return domain.Weights{}, fmt.Errorf("%w: expected name=value, got %q", domain.ErrInvalidWeights, part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return domain.Weights{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidWeights, name, err)
		}
		m[strings.TrimSpace(name)] = v
	}
	return domain.WeightsFromMap(m)
}

// ResolveWeights picks the weights for a run: the --weights flag, then the
// "weights" table of the config file, then the defaults.
func ResolveWeights(flag string, v *viper.Viper) (domain.Weights, error) {
	if strings.TrimSpace(flag) != "" {
		return ParseWeights(flag)
	}
	if v != nil && v.IsSet("weights") {
		var m map[string]float64
		if err := v.UnmarshalKey("weights", &m); err != nil {
			return domain.Weights{}, fmt.Errorf("%w: config file: %v", domain.ErrInvalidWeights, err)
		}
		return domain.WeightsFromMap(m)
	}
	return domain.DefaultWeights(), nil
}
