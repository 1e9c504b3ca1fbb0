package formats

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/tree"
)

// Python parses Python source into classes/functions/imports/constants by
// scanning indentation and signatures with regexes rather than a real
// parser (Go has no Python AST). Imports collapse into one summary line
// so they never dominate the budget. A function is kept as its signature
// only; a class as its signature plus any docstring, with its methods as
// signature-only children. Function and method bodies are not kept.
type Python struct{}

func NewPython() *Python { return &Python{} }

func (Python) Name() string         { return "python" }
func (Python) Extensions() []string { return []string{".py", ".pyw"} }

var (
	pyImportPattern     = regexp.MustCompile(`^(import\s+\S|from\s+\S+\s+import\s)`)
	pyClassPattern      = regexp.MustCompile(`^class\s+(\w+)\s*(\([^)]*\))?\s*:`)
	pyDefPattern        = regexp.MustCompile(`^(async\s+)?def\s+(\w+)\s*\(`)
	pyConstantPattern   = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*)\s*=`)
	pyAnnotationPattern = regexp.MustCompile(`^(\w+)\s*:\s*[^=]+(=.*)?$`)
	pyDocstringPattern  = regexp.MustCompile(`^\s*("""|''')`)
)

// Intrinsic weights: classes outrank functions outrank methods outrank
// imports.
const (
	pyClassWeight      = 0.9
	pyFunctionWeight   = 0.8
	pyMethodWeight     = 0.7
	pyConstantWeight   = 0.6
	pyAnnotationWeight = 0.5
	pyImportSummary    = 0.4
)

func (Python) Parse(source []byte) (*tree.Node, error) {
	root := &tree.Node{Kind: tree.Root, Name: "module"}
	if len(strings.TrimSpace(string(source))) == 0 {
		return root, nil
	}
	lines := strings.Split(string(source), "\n")

	importCount, firstImport, lastImport := 0, 0, 0
	i := 0
	for i < len(lines) {
		raw := lines[i]
		trimmed := strings.TrimLeft(raw, " \t")
		indent := len(raw) - len(trimmed)

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			i++
		case indent > 0:
			// Stray indented line at top level (continuation we didn't
			// consume, or a comment block). Skip past it.
			i++
		case pyImportPattern.MatchString(trimmed):
			if importCount == 0 {
				firstImport = i + 1
			}
			importCount++
			lastImport = i + 1
			i++
		case pyClassPattern.MatchString(trimmed):
			node, next := parsePyClass(lines, i)
			root.AddChild(node)
			i = next
		case pyDefPattern.MatchString(trimmed):
			node, next := parsePyFunction(lines, i, false)
			root.AddChild(node)
			i = next
		case pyConstantPattern.MatchString(trimmed):
			m := pyConstantPattern.FindStringSubmatch(trimmed)
			root.AddChild(&tree.Node{
				Kind:            tree.Definition,
				Name:            m[1],
				Signature:       trimmed,
				LineSpan:        tree.Span{Start: float64(i + 1), End: float64(i + 1)},
				Atomic:          true,
				IntrinsicWeight: pyConstantWeight,
			})
			i++
		case pyAnnotationPattern.MatchString(trimmed) && !strings.Contains(trimmed, "("):
			m := pyAnnotationPattern.FindStringSubmatch(trimmed)
			root.AddChild(&tree.Node{
				Kind:            tree.Definition,
				Name:            m[1],
				Signature:       trimmed,
				LineSpan:        tree.Span{Start: float64(i + 1), End: float64(i + 1)},
				Atomic:          true,
				IntrinsicWeight: pyAnnotationWeight,
			})
			i++
		default:
			i++
		}
	}

	if importCount > 0 {
		summary := fmt.Sprintf("[%d imports, lines %d-%d]", importCount, firstImport, lastImport)
		importNode := &tree.Node{
			Kind:            tree.Import,
			Name:            "imports",
			Signature:       summary,
			LineSpan:        tree.Span{Start: float64(firstImport), End: float64(lastImport)},
			Atomic:          true,
			IntrinsicWeight: pyImportSummary,
		}
		root.Children = append([]*tree.Node{importNode}, root.Children...)
		for _, c := range root.Children {
			c.Depth = root.Depth + 1
		}
	}

	root.RecalculateSpan()
	return root, nil
}

// blockEnd returns the index one past the last line belonging to the
// indented block starting at bodyStart, given the header's indent level.
func blockEnd(lines []string, bodyStart, headerIndent int) int {
	j := bodyStart
	for j < len(lines) {
		trimmed := strings.TrimLeft(lines[j], " \t")
		if trimmed == "" {
			j++
			continue
		}
		indent := len(lines[j]) - len(trimmed)
		if indent <= headerIndent {
			break
		}
		j++
	}
	return j
}

// signatureEnd finds the line index where a possibly-multi-line def/class
// header's parens balance out and the line ends with ':'.
func signatureEnd(lines []string, start int) int {
	depth := 0
	for i := start; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
			}
		}
		if depth <= 0 && strings.HasSuffix(strings.TrimRight(lines[i], " \t"), ":") {
			return i
		}
	}
	return start
}

func parsePyClass(lines []string, start int) (*tree.Node, int) {
	header := strings.TrimLeft(lines[start], " \t")
	headerIndent := len(lines[start]) - len(header)
	sigEnd := signatureEnd(lines, start)
	signature := strings.Join(trimAll(lines[start:sigEnd+1]), " ")
	m := pyClassPattern.FindStringSubmatch(header)
	name := ""
	if m != nil {
		name = m[1]
	}

	bodyStart := sigEnd + 1
	end := blockEnd(lines, bodyStart, headerIndent)

	sig := "class " + signature[strings.Index(signature, name):]
	if docstring, dsEnd := extractDocstring(lines, bodyStart, end); docstring != "" {
		sig += "\n    \"\"\"" + truncateDocstring(docstring) + "\"\"\""
		bodyStart = dsEnd
	}

	node := &tree.Node{
		Kind:            tree.Definition,
		Name:            name,
		Signature:       sig,
		LineSpan:        tree.Span{Start: float64(start + 1), End: float64(end)},
		IntrinsicWeight: pyClassWeight,
	}

	// Direct methods: first indented statement level within the class body.
	methodIndent := -1
	i := bodyStart
	for i < end {
		trimmed := strings.TrimLeft(lines[i], " \t")
		if trimmed == "" {
			i++
			continue
		}
		indent := len(lines[i]) - len(trimmed)
		if methodIndent == -1 {
			methodIndent = indent
		}
		if indent == methodIndent && pyDefPattern.MatchString(trimmed) {
			method, next := parsePyFunction(lines, i, true)
			node.AddChild(method)
			i = next
			continue
		}
		i++
	}
	node.RecalculateSpan()
	if node.LineSpan.End < float64(end) {
		node.LineSpan.End = float64(end)
	}
	return node, end
}

func parsePyFunction(lines []string, start int, isMethod bool) (*tree.Node, int) {
	header := strings.TrimLeft(lines[start], " \t")
	headerIndent := len(lines[start]) - len(header)
	sigEnd := signatureEnd(lines, start)
	signature := strings.Join(trimAll(lines[start:sigEnd+1]), " ")
	m := pyDefPattern.FindStringSubmatch(header)
	name := ""
	if m != nil {
		name = m[2]
	}

	bodyStart := sigEnd + 1
	end := blockEnd(lines, bodyStart, headerIndent)

	weight := pyFunctionWeight
	if isMethod {
		weight = pyMethodWeight
	}
	node := &tree.Node{
		Kind:            tree.Definition,
		Name:            name,
		Signature:       signature,
		LineSpan:        tree.Span{Start: float64(start + 1), End: float64(end)},
		Atomic:          true,
		IntrinsicWeight: weight,
	}
	return node, end
}

func extractDocstring(lines []string, start, end int) (string, int) {
	for i := start; i < end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if !pyDocstringPattern.MatchString(lines[i]) {
			return "", start
		}
		quote := trimmed[:3]
		body := strings.TrimPrefix(trimmed, quote)
		if strings.HasSuffix(body, quote) && len(body) >= 3 {
			return strings.TrimSuffix(body, quote), i + 1
		}
		var buf []string
		for j := i + 1; j < end; j++ {
			if strings.Contains(lines[j], quote) {
				buf = append(buf, strings.TrimSuffix(lines[j], quote))
				return strings.Join(append([]string{body}, buf...), "\n"), j + 1
			}
			buf = append(buf, lines[j])
		}
		return strings.Join(append([]string{body}, buf...), "\n"), end
	}
	return "", start
}

func truncateDocstring(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

func trimAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l)
	}
	return out
}

func (Python) Render(node *tree.Node, budget int, opts compress.Options) ([]compress.OutputLine, bool) {
	return compress.Render(node, budget, opts)
}
