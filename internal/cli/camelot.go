package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

type camelotReport struct {
	A          string   `json:"a"`
	B          string   `json:"b"`
	Distance   int      `json:"distance"`
	Harmonic   float64  `json:"harmonic"`
	Compatible []string `json:"compatible_with_a"`
}

func newCamelotCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "camelot <key-a> <key-b>",
		Short: "Compare two keys on the Camelot wheel",
		Long: `Compare two keys on the Camelot wheel. Keys may be Camelot codes
("8A") or key names ("Am", "C#", "Bb minor").`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveKey(args[0])
			if err != nil {
				return err
			}
			b, err := resolveKey(args[1])
			if err != nil {
				return err
			}

			report := camelotReport{
				A:          a.Camelot,
				B:          b.Camelot,
				Distance:   domain.CamelotDistance(a.Camelot, b.Camelot),
				Harmonic:   domain.HarmonicScore(a, b).Score,
				Compatible: domain.CompatibleKeys(a.Camelot),
			}
			if opts.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			out := cmd.OutOrStdout()
			nameA, _ := domain.CamelotName(a.Camelot)
			nameB, _ := domain.CamelotName(b.Camelot)
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s (%s) × %s (%s)", report.A, nameA, report.B, nameB)))
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("distance"), report.Distance)
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("harmonic"),
				scoreStyle(int(report.Harmonic)).Render(fmt.Sprintf("%.0f", report.Harmonic)))
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("mixes"), strings.Join(report.Compatible, " "))
			return nil
		},
	}
}

// resolveKey accepts a Camelot code or a key name.
func resolveKey(s string) (domain.Key, error) {
	if n, letter, ok := domain.ParseCamelot(s); ok {
		code := fmt.Sprintf("%d%c", n, letter)
		name, _ := domain.CamelotName(code)
		tonic, mode, _ := domain.ParseKeyName(name)
		return domain.Key{Tonic: tonic, Mode: mode, Camelot: code}, nil
	}
	tonic, mode, ok := domain.ParseKeyName(s)
	if !ok {
		return domain.Key{}, fmt.Errorf("unknown key %q", s)
	}
	code, ok := domain.CamelotFor(tonic, mode)
	if !ok {
		return domain.Key{}, fmt.Errorf("unknown key %q", s)
	}
	return domain.Key{Tonic: tonic, Mode: mode, Camelot: code}, nil
}
