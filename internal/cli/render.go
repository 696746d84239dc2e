package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
	reasonStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cellStyle       = lipgloss.NewStyle().Width(8).Align(lipgloss.Right)
)

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	case score >= 50:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")) // yellow
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")) // red
	}
}

type jsonFinding struct {
	Code      domain.Code      `json:"code"`
	Dimension domain.Dimension `json:"dimension,omitempty"`
	Params    map[string]any   `json:"params,omitempty"`
	Message   string           `json:"message"`
}

type jsonResult struct {
	A           string           `json:"a,omitempty"`
	B           string           `json:"b,omitempty"`
	Score       int              `json:"score"`
	Breakdown   domain.Breakdown `json:"breakdown"`
	Reasons     []jsonFinding    `json:"reasons"`
	Suggestions []jsonFinding    `json:"suggestions"`
}

func toJSONResult(a, b string, res domain.Result) jsonResult {
	conv := func(fs []domain.Finding) []jsonFinding {
		out := make([]jsonFinding, 0, len(fs))
		for _, f := range fs {
			out = append(out, jsonFinding{Code: f.Code, Dimension: f.Dimension, Params: f.Params, Message: f.Message()})
		}
		return out
	}
	return jsonResult{
		A:           a,
		B:           b,
		Score:       res.Score,
		Breakdown:   res.Breakdown,
		Reasons:     conv(res.Reasons),
		Suggestions: conv(res.Suggestions),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult prints one comparison for a terminal.
func renderResult(w io.Writer, a, b string, res domain.Result) {
	fmt.Fprintf(w, "%s\n", titleStyle.Render(fmt.Sprintf("%s × %s", a, b)))
	fmt.Fprintf(w, "%s %s\n\n", labelStyle.Render("score"), scoreStyle(res.Score).Render(fmt.Sprintf("%d", res.Score)))

	for _, row := range []struct {
		label string
		value float64
	}{
		{"harmonic", res.Breakdown.Harmonic},
		{"rhythmic", res.Breakdown.Rhythmic},
		{"spectral", res.Breakdown.Spectral},
		{"energy", res.Breakdown.Energy},
	} {
		fmt.Fprintf(w, "%s %5.1f\n", labelStyle.Render(row.label), row.value)
	}

	if len(res.Reasons) > 0 {
		fmt.Fprintln(w)
		for _, f := range res.Reasons {
			fmt.Fprintf(w, "  %s\n", reasonStyle.Render("• "+f.Message()))
		}
	}
	if len(res.Suggestions) > 0 {
		fmt.Fprintln(w)
		for _, f := range res.Suggestions {
			fmt.Fprintf(w, "  %s\n", suggestionStyle.Render("→ "+f.Message()))
		}
	}
}

// renderMatrix prints a symmetric score table.
func renderMatrix(w io.Writer, names []string, scores map[[2]int]int) {
	var header strings.Builder
	header.WriteString(cellStyle.Render(""))
	for i := range names {
		header.WriteString(cellStyle.Render(fmt.Sprintf("#%d", i+1)))
	}
	fmt.Fprintln(w, titleStyle.Render(header.String()))

	for i := range names {
		var row strings.Builder
		row.WriteString(cellStyle.Render(fmt.Sprintf("#%d", i+1)))
		for j := range names {
			switch {
			case i == j:
				row.WriteString(cellStyle.Render("-"))
			default:
				key := [2]int{min(i, j), max(i, j)}
				s := scores[key]
				row.WriteString(scoreStyle(s).Inherit(cellStyle).Render(fmt.Sprintf("%d", s)))
			}
		}
		fmt.Fprintln(w, row.String())
	}

	fmt.Fprintln(w)
	for i, n := range names {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("#%d", i+1)), n)
	}
}
