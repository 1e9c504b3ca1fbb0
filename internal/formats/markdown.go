package formats

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/tree"
)

// Markdown builds a heading-hierarchy tree (H1 > H2 > ... > paragraphs/code)
// using goldmark's AST, walking headings with a stack so each node nests
// under the nearest heading of a lower level.
type Markdown struct{}

func NewMarkdown() *Markdown { return &Markdown{} }

func (Markdown) Name() string         { return "markdown" }
func (Markdown) Extensions() []string { return []string{".md", ".markdown"} }

type headingFrame struct {
	node  *tree.Node
	level int
}

func (Markdown) Parse(source []byte) (*tree.Node, error) {
	root := &tree.Node{Kind: tree.Root, Name: "root"}
	if len(bytes.TrimSpace(source)) == 0 {
		return root, nil
	}

	md := goldmark.New()
	reader := gmtext.NewReader(source)
	doc := md.Parser().Parse(reader)

	stack := []headingFrame{{node: root, level: 0}}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(string(node.Text(source)))
			line := lineNumberAt(source, segmentStart(node, source))
			heading := &tree.Node{
				Kind:      tree.Section,
				Name:      title,
				Signature: fmt.Sprintf("%s %s", strings.Repeat("#", node.Level), title),
				LineSpan:  tree.Span{Start: float64(line), End: float64(line)},
			}
			for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.AddChild(heading)
			stack = append(stack, headingFrame{node: heading, level: node.Level})

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			text := blockText(n, source)
			if strings.TrimSpace(text) == "" {
				continue
			}
			start := lineNumberAt(source, segmentStart(n, source))
			end := start + strings.Count(text, "\n")
			code := &tree.Node{
				Kind:      tree.TextBlock,
				Preview:   text,
				BodyLines: splitLines(text, start),
				LineSpan:  tree.Span{Start: float64(start), End: float64(end)},
				Atomic:    true,
			}
			stack[len(stack)-1].node.AddChild(code)

		default:
			text := extractText(n, source)
			if text == "" {
				continue
			}
			start := lineNumberAt(source, segmentStart(n, source))
			end := start + strings.Count(text, "\n")
			para := &tree.Node{
				Kind:      tree.TextBlock,
				Preview:   text,
				BodyLines: splitLines(text, start),
				LineSpan:  tree.Span{Start: float64(start), End: float64(end)},
			}
			stack[len(stack)-1].node.AddChild(para)
		}
	}

	recalcSpans(root)
	return root, nil
}

// recalcSpans fixes up every container's LineSpan bottom-up: tree.Node's
// RecalculateSpan only unions its direct children, so nested heading
// sections need their innermost spans settled before an ancestor's call
// can see accurate bounds. DepthFirst alone wouldn't do this (it visits
// pre-order), so this recurses first and recalculates on the way back up.
func recalcSpans(n *tree.Node) {
	for _, c := range n.Children {
		recalcSpans(c)
	}
	if len(n.Children) > 0 {
		n.RecalculateSpan()
	}
}

func (Markdown) Render(node *tree.Node, budget int, opts compress.Options) ([]compress.OutputLine, bool) {
	return compress.Render(node, budget, opts)
}

func segmentStart(n ast.Node, src []byte) int {
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		if lines.Len() > 0 {
			return lines.At(0).Start
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		return segmentStart(c, src)
	}
	return 0
}

func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

func lineNumberAt(src []byte, offset int) int {
	if offset < 0 || offset > len(src) {
		offset = len(src)
	}
	return 1 + bytes.Count(src[:offset], []byte("\n"))
}

func splitLines(text string, startLine int) []tree.Line {
	parts := strings.Split(text, "\n")
	lines := make([]tree.Line, len(parts))
	for i, p := range parts {
		lines[i] = tree.Line{Number: startLine + i, Text: p}
	}
	return lines
}
