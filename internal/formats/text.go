package formats

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/tree"
)

// Text splits plain content into a two-level tree of sections (runs of
// non-blank lines) containing lines. Splitting on blank lines lets the
// engine drop whole sections or thin them line by line.
type Text struct {
	// SectionScore and LineScore feed the configured [text] topology
	// scores into each parsed node's IntrinsicWeight, so a loaded
	// config.Config actually reaches this format's scoring instead of
	// only the engine's format-independent defaults.
	SectionScore float64
	LineScore    float64
}

func NewText() *Text { return &Text{SectionScore: 0.6, LineScore: 0.5} }

// NewTextWithScores builds a Text format using caller-supplied topology
// scores, e.g. from a loaded config.Config's Text section.
func NewTextWithScores(sectionScore, lineScore float64) *Text {
	return &Text{SectionScore: sectionScore, LineScore: lineScore}
}

func (Text) Name() string         { return "text" }
func (Text) Extensions() []string { return []string{".txt", ".text", ".log"} }

func (t *Text) Parse(source []byte) (*tree.Node, error) {
	root := &tree.Node{Kind: tree.Root, Name: "root"}
	if len(source) == 0 {
		return root, nil
	}

	lines := strings.Split(string(source), "\n")
	var section []tree.Line
	sectionIdx := 0
	flush := func() {
		if len(section) == 0 {
			return
		}
		sectionIdx++
		name := sectionName(sectionIdx, section)
		sec := &tree.Node{Kind: tree.Section, Name: name, IntrinsicWeight: t.sectionScore()}
		for _, l := range section {
			leaf := tree.NewLeaf(tree.TextBlock, lineName(l.Number), []tree.Line{l})
			leaf.IntrinsicWeight = t.lineScore()
			sec.AddChild(leaf)
		}
		sec.RecalculateSpan()
		root.AddChild(sec)
		section = nil
	}
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		section = append(section, tree.Line{Number: i + 1, Text: l})
	}
	flush()
	root.RecalculateSpan()
	return root, nil
}

func (Text) Render(node *tree.Node, budget int, opts compress.Options) ([]compress.OutputLine, bool) {
	return compress.Render(node, budget, opts)
}

func (t *Text) sectionScore() float64 {
	if t.SectionScore != 0 {
		return t.SectionScore
	}
	return 0.6
}

func (t *Text) lineScore() float64 {
	if t.LineScore != 0 {
		return t.LineScore
	}
	return 0.5
}

func sectionName(idx int, lines []tree.Line) string {
	if len(lines) == 0 {
		return "S"
	}
	first, last := lines[0].Number, lines[len(lines)-1].Number
	return fmt.Sprintf("S%d:L%d-%d", idx, first, last)
}

func lineName(n int) string { return fmt.Sprintf("L%d", n) }

// CustomSeparator chunks content on a literal string or regex separator
// instead of blank lines, used by the CLI's --separator flag.
type CustomSeparator struct {
	Literal string
	Pattern *regexp.Regexp
}

func NewCustomSeparator(literal string, pattern *regexp.Regexp) *CustomSeparator {
	return &CustomSeparator{Literal: literal, Pattern: pattern}
}

func (CustomSeparator) Name() string         { return "text-custom" }
func (CustomSeparator) Extensions() []string { return nil }

func (c *CustomSeparator) Parse(source []byte) (*tree.Node, error) {
	root := &tree.Node{Kind: tree.Root, Name: "root"}
	if len(source) == 0 {
		return root, nil
	}
	content := string(source)

	var chunks []string
	switch {
	case c.Pattern != nil:
		chunks = c.Pattern.Split(content, -1)
	case c.Literal != "":
		chunks = strings.Split(content, c.Literal)
	default:
		chunks = strings.Split(content, "\n")
	}

	lineNo := 1
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			lineNo += strings.Count(chunk, "\n") + 1
			continue
		}
		chunkLines := strings.Split(chunk, "\n")
		var lines []tree.Line
		for _, l := range chunkLines {
			lines = append(lines, tree.Line{Number: lineNo, Text: l})
			lineNo++
		}
		node := tree.NewLeaf(tree.TextBlock, fmt.Sprintf("C%d", i+1), lines)
		root.AddChild(node)
	}
	root.RecalculateSpan()
	return root, nil
}

func (c *CustomSeparator) Render(node *tree.Node, budget int, opts compress.Options) ([]compress.OutputLine, bool) {
	return compress.Render(node, budget, opts)
}
