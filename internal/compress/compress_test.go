package compress

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nub-run/nub/internal/tree"
)

func textLines(n int) []tree.Line {
	lines := make([]tree.Line, n)
	for i := 0; i < n; i++ {
		lines[i] = tree.Line{Number: i + 1, Text: fmt.Sprintf("L%02d", i+1)}
	}
	return lines
}

func TestCompressTree_TotalWithinBudget(t *testing.T) {
	root := tree.NewLeaf(tree.TextBlock, "doc", textLines(100))
	opts := DefaultOptions()
	opts.LineNumbers = false

	out := CompressTree(root, CharBudget{Width: 20, Height: 10}, opts)

	assert.LessOrEqual(t, totalChars(out), 200)
}

func TestCompressTree_IdentityUnderSufficientBudget(t *testing.T) {
	lines := textLines(10)
	root := tree.NewLeaf(tree.TextBlock, "doc", lines)
	opts := DefaultOptions()
	opts.LineNumbers = false

	out := CompressTree(root, CharBudget{Width: 100, Height: 100}, opts)

	require.Len(t, out, 10)
	for i, l := range out {
		assert.Equal(t, lines[i].Text, l.Text)
	}
}

func TestCompressTree_IdentityUnderSufficientBudgetWithSectionWrapper(t *testing.T) {
	lines := textLines(3)
	section := &tree.Node{Kind: tree.Section, Name: "S1:L1-3"}
	for _, l := range lines {
		section.AddChild(tree.NewLeaf(tree.TextBlock, fmt.Sprintf("L%d", l.Number), []tree.Line{l}))
	}
	section.RecalculateSpan()
	root := &tree.Node{Kind: tree.Root, Name: "root"}
	root.AddChild(section)
	root.RecalculateSpan()

	opts := DefaultOptions()
	opts.LineNumbers = false

	out := CompressTree(root, CharBudget{Width: 100, Height: 100}, opts)

	require.Len(t, out, 3, "synthetic root/section names must not appear as header lines")
	for i, l := range out {
		assert.Equal(t, lines[i].Text, l.Text)
	}
}

func TestCompressTree_NoAdjacentFoldMarkers(t *testing.T) {
	root := tree.NewLeaf(tree.TextBlock, "doc", textLines(100))
	opts := DefaultOptions()
	opts.LineNumbers = false

	out := CompressTree(root, CharBudget{Width: 15, Height: 8}, opts)

	for i := 1; i < len(out); i++ {
		if out[i].IsFoldMarker {
			assert.False(t, out[i-1].IsFoldMarker, "two adjacent fold markers at %d", i)
		}
	}
}

func TestCompressTree_Deterministic(t *testing.T) {
	root := tree.NewLeaf(tree.TextBlock, "doc", textLines(100))
	opts := DefaultOptions()

	first := CompressTree(root, CharBudget{Width: 20, Height: 10}, opts)
	second := CompressTree(root, CharBudget{Width: 20, Height: 10}, opts)

	assert.Equal(t, first, second)
}

func TestCompressTree_MonotonicSourceOrder(t *testing.T) {
	root := tree.NewLeaf(tree.TextBlock, "doc", textLines(50))
	opts := DefaultOptions()
	opts.LineNumbers = false

	out := CompressTree(root, CharBudget{Width: 20, Height: 6}, opts)

	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].LineNumber, out[i].LineNumber)
	}
}

func TestCompressTree_BudgetTooSmallNeverFailsHard(t *testing.T) {
	root := tree.NewLeaf(tree.TextBlock, "a-fairly-long-document-name", textLines(5))
	opts := DefaultOptions()
	opts.LineNumbers = false

	out := CompressTree(root, CharBudget{Width: 10, Height: 1}, opts)

	require.Len(t, out, 1)
	assert.LessOrEqual(t, len(out[0].Text), 10)
}

func TestSelectLinesByUCurve_KeepsHeadAndTailWithSingleMarker(t *testing.T) {
	lines := textLines(100)
	out := selectLinesByUCurve(lines, 6, 1.0)

	require.NotEmpty(t, out)
	assert.Equal(t, "L01", out[0].Text)

	markerCount := 0
	for _, l := range out {
		if l.IsFoldMarker {
			markerCount++
		}
	}
	assert.Equal(t, 1, markerCount)
	assert.Equal(t, "L100", out[len(out)-1].Text)
}

func TestSoftmaxAllocate_SumsWithinBudget(t *testing.T) {
	scores := []float64{5.0, 1.0, 0.5, 0.2}
	allocations := softmaxAllocate(100, scores, 0.5, 8)

	sum := 0
	for _, a := range allocations {
		if !a.Folded {
			sum += a.Budget
		}
	}
	assert.LessOrEqual(t, sum, 100)
}

func TestSoftmaxAllocate_FoldsBelowMinLineChars(t *testing.T) {
	scores := []float64{100, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	allocations := softmaxAllocate(20, scores, 0.1, 8)

	foldedAny := false
	for _, a := range allocations[1:] {
		if a.Folded {
			foldedAny = true
		}
	}
	assert.True(t, foldedAny)
}

func TestPositionalScore_UShaped(t *testing.T) {
	n := 11
	start := positionalScore(0, n)
	middle := positionalScore(5, n)
	end := positionalScore(n-1, n)

	assert.Greater(t, start, middle)
	assert.Greater(t, end, middle)
	assert.InDelta(t, start, end, 1e-9)
}

func TestEnforceBudget_MergesAdjacentFoldMarkers(t *testing.T) {
	lines := []OutputLine{
		{LineNumber: 1, Text: "a"},
		{LineNumber: 2, Text: "[...3 more...]", IsFoldMarker: true, FoldedLines: 3},
		{LineNumber: 3, Text: "[...2 more...]", IsFoldMarker: true, FoldedLines: 2},
		{LineNumber: 4, Text: "b"},
	}

	out := mergeFoldMarkers(lines)

	require.Len(t, out, 3)
	assert.True(t, out[1].IsFoldMarker)
	assert.Equal(t, 5, out[1].FoldedLines)
}

func TestEnforceBudget_HardCapEvictsLowestScoreFirst(t *testing.T) {
	lines := []OutputLine{
		{LineNumber: 1, Text: "aaaaaaaaaa", Score: 5},
		{LineNumber: 2, Text: "bbbbbbbbbb", Score: 1},
		{LineNumber: 3, Text: "cccccccccc", Score: 3},
	}

	out := hardCap(lines, 21)

	assert.LessOrEqual(t, totalChars(out), 21)
	for _, l := range out {
		assert.NotEqual(t, "bbbbbbbbbb", l.Text)
	}
}

func TestDeduplicate3grams_DropsRepeatedLine(t *testing.T) {
	lines := []OutputLine{
		{LineNumber: 1, Text: "the quick brown fox jumps"},
		{LineNumber: 2, Text: "the quick brown fox jumps"},
	}

	out := deduplicate3grams(lines)

	require.Len(t, out, 1)
}

func TestGrepInvariant_MatchSurvivesAtSomeLevel(t *testing.T) {
	child1 := tree.NewLeaf(tree.TextBlock, "auth", []tree.Line{{Number: 1, Text: "func auth() {}"}})
	child2 := tree.NewLeaf(tree.TextBlock, "other", []tree.Line{{Number: 2, Text: "func other() {}"}})
	root := &tree.Node{Kind: tree.Container, Name: "pkg", LineSpan: tree.Span{Start: 1, End: 2}}
	root.AddChild(child1)
	root.AddChild(child2)

	opts := DefaultOptions()
	opts.LineNumbers = false
	opts.GrepPattern = regexp.MustCompile("auth")

	out := CompressTree(root, CharBudget{Width: 40, Height: 4}, opts)

	found := false
	for _, l := range out {
		if l.Text == "func auth() {}" || l.Text == "auth" || l.IsFoldMarker {
			found = true
		}
	}
	assert.True(t, found)
}
