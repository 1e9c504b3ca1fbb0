package compress

import (
	"fmt"
	"math"
	"sort"

	"github.com/nub-run/nub/internal/tree"
)

// ucurveWeight scores line index i out of L lines, biasing to head and
// tail. The sibling scorer (positionalScore) uses a cosine curve instead,
// so positionalExponent is read only here.
func ucurveWeight(i, l int) float64 {
	if l <= 1 {
		return 1.0
	}
	x := float64(i) / float64(l)
	a := math.Pow(1-x, positionalExponent)
	b := math.Pow(x, positionalExponent)
	if a > b {
		return a
	}
	return b
}

// selectLinesByUCurve picks which of lines to keep to fit approximately k
// output lines, biasing to head and tail, and returns the kept lines
// interleaved with FoldMarker output lines for elided runs.
//
// Edge cases: if k >= len(lines), all lines are kept unchanged. If k < 2,
// the first line is kept plus one fold marker for the remainder.
func selectLinesByUCurve(lines []tree.Line, k int, score float64) []OutputLine {
	l := len(lines)
	if l == 0 {
		return nil
	}
	if k >= l {
		out := make([]OutputLine, l)
		for i, line := range lines {
			out[i] = OutputLine{LineNumber: float64(line.Number), Text: line.Text, Score: score}
		}
		return out
	}
	if k < 2 {
		out := []OutputLine{{LineNumber: float64(lines[0].Number), Text: lines[0].Text, Score: score}}
		if l > 1 {
			out = append(out, foldMarkerLine(lines[1], lines[l-1], l-1, score))
		}
		return out
	}

	type weighted struct {
		idx    int
		weight float64
	}
	weights := make([]weighted, l)
	for i := range lines {
		weights[i] = weighted{idx: i, weight: ucurveWeight(i, l)}
	}
	sort.SliceStable(weights, func(a, b int) bool {
		return weights[a].weight > weights[b].weight
	})

	kept := make(map[int]bool, k)
	for i := 0; i < k && i < len(weights); i++ {
		kept[weights[i].idx] = true
	}

	keptIdx := make([]int, 0, k)
	for i := range lines {
		if kept[i] {
			keptIdx = append(keptIdx, i)
		}
	}

	var out []OutputLine
	prev := -1
	for _, i := range keptIdx {
		if prev >= 0 && i > prev+1 {
			out = append(out, foldMarkerLine(lines[prev+1], lines[i-1], i-1-prev, score))
		}
		out = append(out, OutputLine{LineNumber: float64(lines[i].Number), Text: lines[i].Text, Score: score})
		prev = i
	}
	if prev >= 0 && prev < l-1 {
		out = append(out, foldMarkerLine(lines[prev+1], lines[l-1], l-1-prev, score))
	}

	return out
}

// foldMarkerLine builds the synthetic OutputLine representing an elided
// run of source lines from first through last (n lines total). The
// fractional line number places the marker at the midpoint of the gap so
// ordering by source position remains stable.
func foldMarkerLine(first, last tree.Line, n int, score float64) OutputLine {
	mid := (float64(first.Number) + float64(last.Number)) / 2
	return OutputLine{
		LineNumber:   mid,
		Text:         fmt.Sprintf("[...%d more lines...]", n),
		Score:        score,
		IsFoldMarker: true,
		FoldedLines:  n,
	}
}

// charBudgetToLineCount derives a target line count K from a character
// budget and an estimated mean line width, used by the renderer before it
// calls selectLinesByUCurve.
func charBudgetToLineCount(budget int, meanLineWidth float64) int {
	if meanLineWidth <= 0 {
		meanLineWidth = 40
	}
	k := int(float64(budget) / meanLineWidth)
	if k < 1 {
		k = 1
	}
	return k
}
