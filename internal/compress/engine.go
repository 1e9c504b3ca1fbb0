package compress

import (
	"fmt"

	"github.com/nub-run/nub/internal/tree"
)

// CompressTree is the engine's single entry point: a parse-independent,
// pure function of (root, budget, options). Control flows top-down: root
// receives the full budget, Render recurses through children with their
// allocated shares, and the budget enforcer runs as a single post-order
// pass at the end.
func CompressTree(root *tree.Node, budget CharBudget, opts Options) []OutputLine {
	opts = fillDefaults(opts)

	lines, ok := Render(root, budget.Total(), opts)
	if !ok {
		// Even the densest single-line form doesn't fit: never fail hard,
		// return one truncated overview line with an ellipsis instead.
		lines = []OutputLine{budgetTooSmallLine(root, budget)}
	}

	lines = enforceBudget(lines, budget, opts)

	if opts.LineNumbers {
		lines = applyLineNumberPrefixes(lines)
	}
	return lines
}

func fillDefaults(opts Options) Options {
	d := DefaultOptions()
	if opts.Temperature <= 0 {
		opts.Temperature = d.Temperature
	}
	if opts.MinLineChars <= 0 {
		opts.MinLineChars = d.MinLineChars
	}
	if (opts.Weights == Weights{}) {
		opts.Weights = d.Weights
	}
	return opts
}

// budgetTooSmallLine renders the ErrBudgetTooSmall fallback: a single line
// truncated to the total budget, ending in an ellipsis.
func budgetTooSmallLine(root *tree.Node, budget CharBudget) OutputLine {
	name := root.Name
	if name == "" {
		name = root.Signature
	}
	total := budget.Total()
	if total < 1 {
		total = 1
	}
	if len(name) > total {
		cut := total - len(ellipsis)
		if cut < 0 {
			cut = 0
		}
		if cut > len(name) {
			cut = len(name)
		}
		name = name[:cut] + ellipsis
		if len(name) > total {
			name = name[:total]
		}
	}
	return OutputLine{LineNumber: root.LineSpan.Start, Text: name}
}

// applyLineNumberPrefixes prefixes each line with "n:" (or "n.f:" for
// fractional addresses), a display concern kept separate from budget
// enforcement so the prefix never counts against the character cap.
func applyLineNumberPrefixes(lines []OutputLine) []OutputLine {
	out := make([]OutputLine, len(lines))
	for i, l := range lines {
		out[i] = l
		out[i].Text = fmt.Sprintf("%s: %s", formatLineNumber(l.LineNumber), l.Text)
	}
	return out
}

func formatLineNumber(n float64) string {
	if n == float64(int(n)) {
		return fmt.Sprintf("%d", int(n))
	}
	return fmt.Sprintf("%.1f", n)
}
