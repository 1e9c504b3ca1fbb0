// Package rangesel parses the --shape and --range flags and prunes a
// parsed tree.Node down to a line span before it reaches the
// compression engine.
package rangesel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nub-run/nub/internal/tree"
)

// ParseShape parses "WIDTH:HEIGHT" into (width, height).
func ParseShape(s string) (width, height int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid shape format: %s. Use WIDTH:HEIGHT (e.g., 120:100)", s)
	}
	width, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	height, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("invalid shape format: %s. Both WIDTH and HEIGHT must be integers", s)
	}
	if width < 1 {
		return 0, 0, fmt.Errorf("width must be >= 1, got %d", width)
	}
	if height < 1 {
		return 0, 0, fmt.Errorf("height must be >= 1, got %d", height)
	}
	return width, height, nil
}

// ParseRange parses "START:END" (fractional allowed) into (start, end).
// An empty string yields ok=false with no error, meaning "no range
// requested".
func ParseRange(s string) (start, end float64, ok bool, err error) {
	if strings.TrimSpace(s) == "" {
		return 0, 0, false, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false, fmt.Errorf("invalid range format: %s. Use START:END (e.g., 1.0:5.0 or 100:200)", s)
	}
	start, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	end, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false, fmt.Errorf("invalid range format: %s. START and END must be numbers", s)
	}
	if start < 1.0 {
		return 0, 0, false, fmt.Errorf("start line must be >= 1.0, got %v", start)
	}
	if end < start {
		return 0, 0, false, fmt.Errorf("end line must be >= start line, got %v:%v", start, end)
	}
	return start, end, true, nil
}

// Prune returns a copy of root restricted to [start, end], or (nil, false)
// if nothing in the tree falls within the span. Container nodes whose
// span doesn't overlap the range are dropped entirely. Nodes that
// straddle a fractional boundary have their BodyLines trimmed and the
// first/last surviving line truncated by character position (a
// fractional end of X.5 truncates that line at floor(0.5*len(line))).
func Prune(root *tree.Node, start, end float64) (*tree.Node, bool) {
	span := tree.Span{Start: start, End: end}
	if !span.Overlaps(root.LineSpan) {
		return nil, false
	}
	return prune(root, span)
}

func prune(n *tree.Node, span tree.Span) (*tree.Node, bool) {
	if !span.Overlaps(n.LineSpan) {
		return nil, false
	}

	out := &tree.Node{
		Kind:            n.Kind,
		Name:            n.Name,
		Signature:       n.Signature,
		Preview:         n.Preview,
		IntrinsicWeight: n.IntrinsicWeight,
		Atomic:          n.Atomic,
		Depth:           n.Depth,
	}

	if len(n.Children) == 0 {
		if len(n.BodyLines) == 0 {
			// Signature-only leaf (Python definitions, CSV/JSON rows,
			// Folder entries): nothing to trim a partial line from. The
			// overlap check above already confirmed it belongs in range.
			out.LineSpan = n.LineSpan
			return out, true
		}
		lines := pruneLines(n.BodyLines, span)
		if len(lines) == 0 {
			return nil, false
		}
		out.BodyLines = lines
		out.LineSpan = tree.Span{Start: float64(lines[0].Number), End: float64(lines[len(lines)-1].Number)}
		return out, true
	}

	for _, c := range n.Children {
		if pc, ok := prune(c, span); ok {
			out.AddChild(pc)
		}
	}
	if len(out.Children) == 0 {
		return nil, false
	}
	out.RecalculateSpan()
	return out, true
}

// pruneLines keeps every line whose number falls within
// [floor(start), floor(end)], truncating the boundary line(s)' text by
// character position when start or end has a fractional part.
func pruneLines(lines []tree.Line, span tree.Span) []tree.Line {
	startLine := int(span.Start)
	startFrac := span.Start - float64(startLine)
	endLine := int(span.End)
	endFrac := span.End - float64(endLine)

	var out []tree.Line
	for _, l := range lines {
		if l.Number < startLine || l.Number > endLine {
			continue
		}
		startCut, endCut := 0, len(l.Text)
		if l.Number == startLine && startFrac > 0 {
			startCut = int(startFrac * float64(len(l.Text)))
		}
		if l.Number == endLine && endFrac > 0 {
			endCut = int(endFrac * float64(len(l.Text)))
		}
		if startCut > endCut {
			startCut = endCut
		}
		out = append(out, tree.Line{Number: l.Number, Text: l.Text[startCut:endCut]})
	}
	return out
}
