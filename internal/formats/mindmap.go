package formats

import (
	"math"
	"regexp"
	"strings"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/tree"
)

var (
	mindMapDetectPattern = regexp.MustCompile(`(?m)^\[\d+\]`)
	mindMapNodePattern   = regexp.MustCompile(`^\[(\d+)\]\s*(.*)`)
	mindMapRefPattern    = regexp.MustCompile(`\[(\d+)\]`)
)

// mindMapConnectivityK is the log-boost coefficient applied to a node's
// in-degree, the number of times other nodes reference it as "[N]".
const mindMapConnectivityK = 0.3

// MindMap treats "[N] Title" prefixed lines as section boundaries. It's a
// content-detected format (no extension): Detect requires at least 3
// bracketed node markers before claiming the content. A node's
// topological weight is boosted both flatly, since numbered nodes anchor
// the whole map, and by its in-degree: nodes other sections cross-reference
// as "[N]" are weighted higher than isolated ones.
type MindMap struct {
	// SectionScore is the base topological weight for a node section,
	// boosted 1.5x over a plain text section since numbered nodes anchor
	// the whole map. Defaults to config.Defaults().Text.SectionScore.
	SectionScore float64
}

func NewMindMap() *MindMap { return &MindMap{SectionScore: 0.6} }

// NewMindMapWithScore builds a MindMap using a caller-supplied section
// score, e.g. from a loaded config.Config's Text.SectionScore.
func NewMindMapWithScore(sectionScore float64) *MindMap {
	return &MindMap{SectionScore: sectionScore}
}

func (MindMap) Name() string         { return "mindmap" }
func (MindMap) Extensions() []string { return nil }

func (MindMap) Detect(content []byte) bool {
	return len(mindMapDetectPattern.FindAll(content, -1)) >= 3
}

func (m *MindMap) Parse(source []byte) (*tree.Node, error) {
	root := &tree.Node{Kind: tree.Root, Name: "root"}
	if len(source) == 0 {
		return root, nil
	}

	text := string(source)
	lines := strings.Split(text, "\n")
	indegree := crossReferenceCounts(text)

	var current *tree.Node
	var currentNumber string
	var currentLines, preamble []tree.Line

	flush := func(target *tree.Node, lines []tree.Line, name, number string) *tree.Node {
		if len(lines) == 0 {
			return nil
		}
		weight := m.sectionScore()
		if number != "" {
			weight *= 1.5 * (1 + mindMapConnectivityK*math.Log(1+float64(indegree[number])))
		}
		sec := &tree.Node{Kind: tree.Section, Name: name, IntrinsicWeight: weight}
		for _, l := range lines {
			sec.AddChild(tree.NewLeaf(tree.TextBlock, lineName(l.Number), []tree.Line{l}))
		}
		sec.RecalculateSpan()
		if target != nil {
			target.AddChild(sec)
		}
		return sec
	}

	for i, line := range lines {
		lineNo := i + 1
		match := mindMapNodePattern.FindStringSubmatch(line)
		if match != nil {
			if current != nil && len(currentLines) > 0 {
				flush(root, currentLines, current.Name, currentNumber)
				currentLines = nil
			}
			if current == nil && len(preamble) > 0 {
				flush(root, preamble, "preamble", "")
				preamble = nil
			}
			currentNumber = match[1]
			current = &tree.Node{Kind: tree.Section, Name: "[" + currentNumber + "]"}
			currentLines = append(currentLines, tree.Line{Number: lineNo, Text: line})
			continue
		}
		if current != nil {
			currentLines = append(currentLines, tree.Line{Number: lineNo, Text: line})
		} else {
			preamble = append(preamble, tree.Line{Number: lineNo, Text: line})
		}
	}

	if current != nil && len(currentLines) > 0 {
		flush(root, currentLines, current.Name, currentNumber)
	} else if current == nil && len(preamble) > 0 {
		flush(root, preamble, "preamble", "")
	}

	root.RecalculateSpan()
	return root, nil
}

// crossReferenceCounts returns, per node number, how many times other
// nodes reference it as "[N]" (its in-degree). Each node's own defining
// line ("[N] Title") also matches the reference pattern, so that one
// self-occurrence is subtracted back out.
func crossReferenceCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, m := range mindMapRefPattern.FindAllStringSubmatch(text, -1) {
		counts[m[1]]++
	}
	for n := range counts {
		counts[n]--
		if counts[n] < 0 {
			counts[n] = 0
		}
	}
	return counts
}

func (MindMap) Render(node *tree.Node, budget int, opts compress.Options) ([]compress.OutputLine, bool) {
	return compress.Render(node, budget, opts)
}

func (m *MindMap) sectionScore() float64 {
	if m.SectionScore != 0 {
		return m.SectionScore
	}
	return 0.6
}
