package formats

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/tree"
)

// CSV keeps the header row pinned as an atomic node and turns each
// remaining row into its own atomic node, so the scorer and allocator can
// keep or fold whole rows without ever splitting one mid-line.
type CSV struct{}

func NewCSV() *CSV { return &CSV{} }

func (CSV) Name() string         { return "csv" }
func (CSV) Extensions() []string { return []string{".csv", ".tsv"} }

func (CSV) Parse(source []byte) (*tree.Node, error) {
	root := &tree.Node{Kind: tree.Root, Name: "root"}
	text := string(source)
	if strings.TrimSpace(text) == "" {
		return root, nil
	}

	delim := ','
	if strings.Count(firstLine(text), "\t") > strings.Count(firstLine(text), ",") {
		delim = '\t'
	}
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil || len(records) == 0 {
		return root, fmt.Errorf("%w: %v", compress.ErrParseFailed, err)
	}

	header := &tree.Node{
		Kind:      tree.Definition,
		Name:      "header",
		Signature: strings.Join(records[0], string(delim)),
		LineSpan:  tree.Span{Start: 1, End: 1},
		Atomic:    true,
	}
	root.AddChild(header)

	for i, row := range records[1:] {
		lineNo := i + 2
		root.AddChild(&tree.Node{
			Kind:      tree.TextBlock,
			Name:      fmt.Sprintf("row%d", i+1),
			Signature: strings.Join(row, string(delim)),
			LineSpan:  tree.Span{Start: float64(lineNo), End: float64(lineNo)},
			Atomic:    true,
		})
	}
	root.RecalculateSpan()
	return root, nil
}

func (CSV) Render(node *tree.Node, budget int, opts compress.Options) ([]compress.OutputLine, bool) {
	return compress.Render(node, budget, opts)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
