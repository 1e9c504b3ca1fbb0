package compress

import (
	"fmt"
	"strings"
)

// enforceBudget runs the final pass over an assembled OutputLine sequence:
// merge adjacent fold markers, truncate or wrap overlong lines, evict down
// to the hard cap, then (if enabled) deduplicate 3-grams last so it can
// only shrink output.
func enforceBudget(lines []OutputLine, budget CharBudget, opts Options) []OutputLine {
	lines = mergeFoldMarkers(lines)
	lines = truncateOrWrapLines(lines, int(budget.Width), opts.WrapWidth)
	lines = hardCap(lines, budget.Total())
	if opts.Deduplicate {
		lines = deduplicate3grams(lines)
	}
	if opts.Limit > 0 {
		lines = hardCap(lines, opts.Limit)
	}
	return lines
}

// mergeFoldMarkers collapses runs of adjacent (or blank-separated) fold
// markers into one, summing their folded-line counts. A run of purely
// blank lines between two markers is treated as cosmetic separation and
// dropped along with the merge.
func mergeFoldMarkers(lines []OutputLine) []OutputLine {
	if len(lines) == 0 {
		return lines
	}
	out := make([]OutputLine, 0, len(lines))
	var pendingBlanks []OutputLine
	for _, l := range lines {
		blank := !l.IsFoldMarker && strings.TrimSpace(l.Text) == ""
		if blank && len(out) > 0 && out[len(out)-1].IsFoldMarker {
			pendingBlanks = append(pendingBlanks, l)
			continue
		}
		if l.IsFoldMarker && len(out) > 0 && out[len(out)-1].IsFoldMarker {
			prev := &out[len(out)-1]
			prev.FoldedLines += l.FoldedLines
			prev.Text = fmt.Sprintf("[...%d more lines...]", prev.FoldedLines)
			prev.LineNumber = (prev.LineNumber + l.LineNumber) / 2
			pendingBlanks = nil
			continue
		}
		out = append(out, pendingBlanks...)
		pendingBlanks = nil
		out = append(out, l)
	}
	out = append(out, pendingBlanks...)
	return out
}

// truncateOrWrapLines enforces the per-line width bound. When wrapWidth is
// zero, overlong lines are truncated with an ellipsis suffix; otherwise
// they're wrapped into continuation lines with fractional line numbers
// n.0, n.5, and so on, one fractional step per wrapped segment.
func truncateOrWrapLines(lines []OutputLine, width, wrapWidth int) []OutputLine {
	if width <= 0 {
		return lines
	}
	out := make([]OutputLine, 0, len(lines))
	for _, l := range lines {
		if len(l.Text) <= width {
			out = append(out, l)
			continue
		}
		if wrapWidth <= 0 {
			out = append(out, truncateWithEllipsis(l, width))
			continue
		}
		out = append(out, wrapLine(l, wrapWidth)...)
	}
	return out
}

const ellipsis = "..."

// truncateWithEllipsis clips text to width, reserving room for a trailing
// "..." so the result never exceeds width.
func truncateWithEllipsis(l OutputLine, width int) OutputLine {
	if width < 1 {
		width = 1
	}
	if len(l.Text) <= width {
		return l
	}
	cut := width - len(ellipsis)
	if cut < 0 {
		cut = 0
	}
	if cut > len(l.Text) {
		cut = len(l.Text)
	}
	l.Text = l.Text[:cut] + ellipsis
	if len(l.Text) > width {
		l.Text = l.Text[:width]
	}
	return l
}

// wrapLine splits an overlong line into segments of at most wrapWidth
// characters, addressing each continuation with a fractional line number.
func wrapLine(l OutputLine, wrapWidth int) []OutputLine {
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	text := l.Text
	var segments []string
	for len(text) > 0 {
		if len(text) <= wrapWidth {
			segments = append(segments, text)
			break
		}
		segments = append(segments, text[:wrapWidth])
		text = text[wrapWidth:]
	}
	if len(segments) == 0 {
		return []OutputLine{l}
	}
	out := make([]OutputLine, len(segments))
	step := 1.0 / float64(len(segments))
	base := float64(int(l.LineNumber))
	for i, seg := range segments {
		out[i] = OutputLine{
			LineNumber:   base + step*float64(i),
			Text:         seg,
			Score:        l.Score,
			IsStructural: l.IsStructural,
		}
	}
	return out
}

// hardCap drops lowest-scoring, non-structural leaf lines one at a time
// until the total character count fits cap, re-merging fold markers as it
// goes. Structural signature lines are evicted last; a fold marker is
// never the first line dropped but may be dropped once its neighbors are
// gone.
func hardCap(lines []OutputLine, cap int) []OutputLine {
	if cap <= 0 {
		return lines
	}
	for totalChars(lines) > cap && len(lines) > 0 {
		victim := pickEvictionVictim(lines)
		if victim < 0 {
			break
		}
		lines = append(lines[:victim], lines[victim+1:]...)
		lines = mergeFoldMarkers(lines)
	}
	return lines
}

// pickEvictionVictim finds the index of the lowest-scoring line eligible
// for eviction: prefer non-structural, non-fold-marker leaf lines; only
// fall back to fold markers, then structural lines, once nothing else
// remains.
func pickEvictionVictim(lines []OutputLine) int {
	victim := -1
	victimScore := 0.0
	for i, l := range lines {
		if l.IsStructural || l.IsFoldMarker {
			continue
		}
		if victim == -1 || l.Score < victimScore {
			victim = i
			victimScore = l.Score
		}
	}
	if victim != -1 {
		return victim
	}
	// Nothing ordinary left; fold markers may go next.
	for i, l := range lines {
		if l.IsFoldMarker {
			if victim == -1 || l.Score < victimScore {
				victim = i
				victimScore = l.Score
			}
		}
	}
	if victim != -1 {
		return victim
	}
	// Last resort: evict a structural line.
	for i, l := range lines {
		if victim == -1 || l.Score < victimScore {
			victim = i
			victimScore = l.Score
		}
	}
	return victim
}

// totalChars sums the character length of every line plus one newline
// separator between lines, matching how the CLI joins output.
func totalChars(lines []OutputLine) int {
	total := 0
	for i, l := range lines {
		total += len(l.Text)
		if i > 0 {
			total++
		}
	}
	return total
}

// deduplicate3grams drops any non-structural, non-fold-marker line whose
// word 3-grams have all been seen earlier in the output, applied last so
// it can only shrink output below the already-enforced cap.
func deduplicate3grams(lines []OutputLine) []OutputLine {
	seen := make(map[string]bool)
	out := make([]OutputLine, 0, len(lines))
	for _, l := range lines {
		if l.IsStructural || l.IsFoldMarker {
			out = append(out, l)
			addGrams(seen, l.Text)
			continue
		}
		grams := threeGrams(l.Text)
		if len(grams) > 0 && allSeen(seen, grams) {
			continue
		}
		out = append(out, l)
		addGrams(seen, l.Text)
	}
	return out
}

func threeGrams(text string) []string {
	tokens := tokenize3grams(text)
	if len(tokens) < 3 {
		return nil
	}
	grams := make([]string, 0, len(tokens)-2)
	for i := 0; i+3 <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+3], " "))
	}
	return grams
}

func addGrams(seen map[string]bool, text string) {
	for _, g := range threeGrams(text) {
		seen[g] = true
	}
}

func allSeen(seen map[string]bool, grams []string) bool {
	for _, g := range grams {
		if !seen[g] {
			return false
		}
	}
	return true
}
