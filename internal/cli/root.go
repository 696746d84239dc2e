// Package cli implements mashctl, an offline companion to the API that scores
// analysis files on disk without a database or an analysis service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configFiles are looked up in the working directory when --config is unset.
var configFiles = []string{".mashctl.yaml", ".mashctl.yml", ".mashctl.json"}

type options struct {
	configFile string
	weights    string
	normalize  bool
	jsonOut    bool

	v *viper.Viper
}

// NewRootCommand builds the mashctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{v: viper.New()}

	root := &cobra.Command{
		Use:   "mashctl",
		Short: "Score mashup compatibility of analysed tracks",
		Long: `mashctl rates how well two tracks mix together from their analyses.

Analyses are read from .json or .yaml files using the same fields as the
HTTP API. Weights come from --weights, then the "weights" table of
.mashctl.yaml, then the built-in defaults.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.readConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default .mashctl.yaml in the working directory)")
	flags.StringVarP(&opts.weights, "weights", "w", "", "Weights as harmonic=0.4,rhythmic=0.3,spectral=0.2,energy=0.1")
	flags.BoolVar(&opts.normalize, "normalize", false, "Rescale weights so they sum to 1")
	flags.BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	_ = opts.v.BindPFlag("normalize", flags.Lookup("normalize"))
	_ = opts.v.BindPFlag("json", flags.Lookup("json"))

	root.AddCommand(
		newScoreCommand(opts),
		newMatrixCommand(opts),
		newCamelotCommand(opts),
	)
	return root
}

// Execute runs mashctl and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *options) readConfig() error {
	path := o.configFile
	if path == "" {
		for _, p := range configFiles {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return nil
	}
	o.v.SetConfigFile(path)
	if err := o.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

func (o *options) scorer() (scorerConfig, error) {
	w, err := ResolveWeights(o.weights, o.v)
	if err != nil {
		return scorerConfig{}, err
	}
	if o.v.GetBool("normalize") {
		if w, err = w.Normalize(); err != nil {
			return scorerConfig{}, err
		}
	}
	return scorerConfig{weights: w, json: o.v.GetBool("json")}, nil
}
