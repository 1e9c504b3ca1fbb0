package compress

import (
	"fmt"

	"github.com/nub-run/nub/internal/tree"
)

// LoD is the level-of-detail a node was rendered at, from densest to
// sparsest: Focus, Detailed, Regional, Overview, Fold.
type LoD int

const (
	Focus LoD = iota
	Detailed
	Regional
	Overview
	Fold
)

// isStructuralKind reports whether a node's signature line should be
// protected from early eviction under the hard cap.
func isStructuralKind(k tree.Kind) bool {
	switch k {
	case tree.Container, tree.Definition, tree.Section:
		return true
	default:
		return false
	}
}

// Render picks the densest level-of-detail for node that fits budget
// characters, recursing into children when the node has any and its own
// signature line leaves room. Returns false only when even Overview (the
// bare name) exceeds budget, signaling the caller to fold the node.
//
// This is the shared, format-agnostic renderer: every concrete Format's
// Render method delegates to this and relies on the Signature/Preview/
// Name/BodyLines populated at parse time. Format-specific behavior such as
// MindMap's in-degree boost and Folder's indentation is applied when the
// tree is parsed, not here.
func Render(node *tree.Node, budget int, opts Options) ([]OutputLine, bool) {
	return renderNode(node, budget, 1.0, opts)
}

func renderNode(node *tree.Node, budget int, nodeScore float64, opts Options) ([]OutputLine, bool) {
	if budget <= 0 {
		return nil, false
	}
	if node.Kind == tree.FoldMarker {
		return []OutputLine{foldMarkerForNode(node, nodeScore)}, true
	}
	if !node.IsLeaf() {
		if lines, ok := renderContainer(node, budget, nodeScore, opts); ok {
			return lines, true
		}
	}
	return renderLeaf(node, budget, nodeScore, opts)
}

// renderContainer renders a container's own signature header, then
// recurses into children with the remaining budget via score+allocate. A
// header is only emitted when the node has a real Signature (a class,
// heading, or file, a genuine structural landmark); a node with no
// Signature has nothing of its own to show and renders as just its
// children, so a synthetic grouping Name never appears in the output.
// Falls back to false (letting the caller try leaf-style Overview/Fold)
// if a present signature header alone does not fit.
func renderContainer(node *tree.Node, budget int, nodeScore float64, opts Options) ([]OutputLine, bool) {
	if node.Signature == "" {
		return renderChildren(node, budget, opts), true
	}

	header := headerLine(node, nodeScore)
	if len(header.Text) > budget {
		return nil, false
	}

	remaining := budget - len(header.Text) - 1 // +1 for the joining newline
	if remaining < opts.MinLineChars || len(node.Children) == 0 {
		return []OutputLine{header}, true
	}

	out := []OutputLine{header}
	out = append(out, renderChildren(node, remaining, opts)...)
	return out, true
}

// renderChildren scores node's children, allocates the budget across them,
// and recursively renders each survivor, folding the rest.
func renderChildren(node *tree.Node, budget int, opts Options) []OutputLine {
	// Very wide fan-out with a tight per-child share degenerates into a
	// U-curve selection over the children themselves rather than a
	// softmax allocation, once there are more than ~50 children and the
	// average share per child is too thin to be worth full scoring.
	avgPerChild := float64(budget) / float64(len(node.Children))
	if len(node.Children) > 50 && avgPerChild < float64(opts.MinLineChars) {
		return renderChildrenByUCurve(node, budget, opts)
	}

	scores := scoreChildren(node, opts)
	allocations := softmaxAllocate(budget, scores, opts.Temperature, opts.MinLineChars)

	var out []OutputLine
	for i, child := range node.Children {
		a := allocations[i]
		if a.Folded {
			out = append(out, foldChild(child, scores[i]))
			continue
		}
		lines, ok := renderNode(child, a.Budget, scores[i], opts)
		if !ok {
			out = append(out, foldChild(child, scores[i]))
			continue
		}
		out = append(out, lines...)
	}
	return out
}

// renderChildrenByUCurve treats an oversized child list as a flat sequence
// and applies the same head/tail bias the U-curve line selector uses for
// leaf text, rendering each kept child as its one-line header (Signature,
// or Name when the child has none).
func renderChildrenByUCurve(node *tree.Node, budget int, opts Options) []OutputLine {
	scores := scoreChildren(node, opts)
	meanWidth := 24.0
	k := charBudgetToLineCount(budget, meanWidth)

	weighted := make([]indexed, len(node.Children))
	n := len(node.Children)
	for i := range node.Children {
		weighted[i] = indexed{idx: i, weight: ucurveWeight(i, n)}
	}
	kept := make(map[int]bool, k)
	sortByWeightDesc(weighted)
	for i := 0; i < k && i < len(weighted); i++ {
		kept[weighted[i].idx] = true
	}

	var out []OutputLine
	prev := -1
	for i, child := range node.Children {
		if !kept[i] {
			continue
		}
		if prev >= 0 && i > prev+1 {
			out = append(out, tallyFold(node.Children[prev+1:i], scores[prev+1]))
		}
		out = append(out, headerLine(child, scores[i]))
		prev = i
	}
	if prev >= 0 && prev < n-1 {
		out = append(out, tallyFold(node.Children[prev+1:], scores[prev]))
	}
	return out
}

// indexed pairs a child's original position with a computed weight, used
// by renderChildrenByUCurve to sort children by U-curve weight while
// keeping track of where each one sits in the original sequence.
type indexed struct {
	idx    int
	weight float64
}

func sortByWeightDesc(items []indexed) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].weight > items[j-1].weight; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// tallyFold builds a single fold marker summarizing a run of skipped
// sibling nodes.
func tallyFold(skipped []*tree.Node, score float64) OutputLine {
	if len(skipped) == 0 {
		return OutputLine{}
	}
	first, last := skipped[0], skipped[len(skipped)-1]
	span := tree.Span{Start: first.LineSpan.Start, End: last.LineSpan.End}
	return OutputLine{
		LineNumber:   (first.LineSpan.Start + last.LineSpan.End) / 2,
		Text:         fmt.Sprintf("[...%d more...]", len(skipped)),
		Score:        score,
		IsFoldMarker: true,
		FoldedLines:  span.LineCount(),
	}
}

// foldChild builds a fold marker output line for a single dropped child.
func foldChild(child *tree.Node, score float64) OutputLine {
	label := child.Name
	if label == "" {
		label = child.Signature
	}
	return OutputLine{
		LineNumber:   (child.LineSpan.Start + child.LineSpan.End) / 2,
		Text:         fmt.Sprintf("[%s folded]", label),
		Score:        score,
		IsFoldMarker: true,
		FoldedLines:  child.LineSpan.LineCount(),
	}
}

func foldMarkerForNode(node *tree.Node, score float64) OutputLine {
	return OutputLine{
		LineNumber:   (node.LineSpan.Start + node.LineSpan.End) / 2,
		Text:         node.Name,
		Score:        score,
		IsFoldMarker: true,
		FoldedLines:  node.LineSpan.LineCount(),
	}
}

// headerLine renders a node's dense one-line Regional form: its Signature,
// falling back to Name when Signature is unset.
func headerLine(node *tree.Node, score float64) OutputLine {
	text := node.Signature
	if text == "" {
		text = node.Name
	}
	return OutputLine{
		LineNumber:   node.LineSpan.Start,
		Text:         text,
		Score:        score,
		IsStructural: isStructuralKind(node.Kind),
	}
}

// renderLeaf runs the Focus->Detailed->Regional->Overview->Fold ladder for
// a childless node.
func renderLeaf(node *tree.Node, budget int, nodeScore float64, opts Options) ([]OutputLine, bool) {
	// Focus: full body verbatim.
	if len(node.BodyLines) > 0 {
		full := linesFrom(node.BodyLines, nodeScore)
		if totalChars(full) <= budget {
			return full, true
		}
	}

	// Detailed: U-curve sketch of the body sized to the remaining budget.
	if len(node.BodyLines) > 0 && !node.Atomic {
		k := charBudgetToLineCount(budget, meanLineWidth(node.BodyLines))
		sketch := selectLinesByUCurve(node.BodyLines, k, nodeScore)
		if totalChars(sketch) <= budget {
			return sketch, true
		}
	}

	// Regional: signature + first preview line.
	regional := regionalLines(node, nodeScore)
	if len(regional) > 0 && totalChars(regional) <= budget {
		return regional, true
	}

	// Overview: bare name.
	overview := OutputLine{LineNumber: node.LineSpan.Start, Text: node.Name, Score: nodeScore, IsStructural: isStructuralKind(node.Kind)}
	if overview.Text == "" {
		overview.Text = node.Signature
	}
	if len(overview.Text) <= budget {
		return []OutputLine{overview}, true
	}

	return nil, false
}

func regionalLines(node *tree.Node, score float64) []OutputLine {
	var out []OutputLine
	if node.Signature != "" {
		out = append(out, OutputLine{LineNumber: node.LineSpan.Start, Text: node.Signature, Score: score, IsStructural: isStructuralKind(node.Kind)})
	}
	if node.Preview != "" {
		out = append(out, OutputLine{LineNumber: node.LineSpan.Start + 0.5, Text: node.Preview, Score: score})
	}
	return out
}

func linesFrom(lines []tree.Line, score float64) []OutputLine {
	out := make([]OutputLine, len(lines))
	for i, l := range lines {
		out[i] = OutputLine{LineNumber: float64(l.Number), Text: l.Text, Score: score}
	}
	return out
}

func meanLineWidth(lines []tree.Line) float64 {
	if len(lines) == 0 {
		return 40
	}
	total := 0
	for _, l := range lines {
		total += len(l.Text)
	}
	return float64(total) / float64(len(lines))
}
