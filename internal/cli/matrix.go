package cli

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

type matrixEntry struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Score int    `json:"score"`
}

func newMatrixCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix <glob>",
		Short: "Score every pair of analysis files matching a glob",
		Long: `Score every pair of analysis files matching a glob such as
"crate/**/*.yaml". Files are paired in name order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.scorer()
			if err != nil {
				return err
			}

			paths, err := doublestar.FilepathGlob(args[0], doublestar.WithFilesOnly())
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", args[0], err)
			}
			if len(paths) < 2 {
				return fmt.Errorf("pattern %q matched %d file(s), need at least 2", args[0], len(paths))
			}
			sort.Strings(paths)

			analyses := make([]domain.TrackAnalysis, len(paths))
			for i, p := range paths {
				if analyses[i], err = LoadAnalysis(p); err != nil {
					return err
				}
			}

			s := cfg.scorer()
			scores := make(map[[2]int]int)
			var entries []matrixEntry
			for i := 0; i < len(paths); i++ {
				for j := i + 1; j < len(paths); j++ {
					res := s.ScorePair(analyses[i], analyses[j])
					scores[[2]int{i, j}] = res.Score
					entries = append(entries, matrixEntry{A: paths[i], B: paths[j], Score: res.Score})
				}
			}

			if cfg.json {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			renderMatrix(cmd.OutOrStdout(), paths, scores)
			return nil
		},
	}
}
