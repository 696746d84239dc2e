package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

type scorerConfig struct {
	weights domain.Weights
	json    bool
}

func (c scorerConfig) scorer() domain.Scorer {
	return domain.Scorer{Weights: c.weights}
}

func newScoreCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "score <analysis-a> <analysis-b>",
		Short: "Score two analysis files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.scorer()
			if err != nil {
				return err
			}
			a, err := LoadAnalysis(args[0])
			if err != nil {
				return err
			}
			b, err := LoadAnalysis(args[1])
			if err != nil {
				return err
			}

			res := cfg.scorer().ScorePair(a, b)
			nameA, nameB := trackName(args[0]), trackName(args[1])
			if cfg.json {
				return writeJSON(cmd.OutOrStdout(), toJSONResult(nameA, nameB, res))
			}
			renderResult(cmd.OutOrStdout(), nameA, nameB, res)
			return nil
		},
	}
}

func trackName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
