package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLeafDerivesSpan(t *testing.T) {
	lines := []Line{{Number: 4, Text: "a"}, {Number: 5, Text: "b"}, {Number: 6, Text: "c"}}
	n := NewLeaf(TextBlock, "block", lines)

	require.NotNil(t, n)
	assert.Equal(t, Span{Start: 4, End: 6}, n.LineSpan)
	assert.True(t, n.IsLeaf())
}

func TestAddChildSetsDepth(t *testing.T) {
	root := &Node{Kind: Root}
	child := &Node{Kind: Container}
	root.AddChild(child)

	assert.Equal(t, 1, child.Depth)
	assert.Len(t, root.Children, 1)
}

func TestRecalculateSpanUnionsChildren(t *testing.T) {
	parent := &Node{Kind: Container}
	parent.AddChild(&Node{Kind: Definition, LineSpan: Span{Start: 10, End: 15}})
	parent.AddChild(&Node{Kind: Definition, LineSpan: Span{Start: 16, End: 20}})

	parent.RecalculateSpan()

	assert.Equal(t, Span{Start: 10, End: 20}, parent.LineSpan)
}

func TestSpanContainsAndOverlaps(t *testing.T) {
	outer := Span{Start: 1, End: 100}
	inner := Span{Start: 10, End: 20}
	disjoint := Span{Start: 200, End: 210}

	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.True(t, outer.Overlaps(inner))
	assert.False(t, outer.Overlaps(disjoint))
}

func TestDepthFirstVisitsAllNodesInOrder(t *testing.T) {
	root := &Node{Kind: Root, Name: "root"}
	a := &Node{Kind: Container, Name: "a"}
	b := &Node{Kind: Container, Name: "b"}
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(&Node{Kind: TextBlock, Name: "a1"})

	var order []string
	root.DepthFirst(func(n *Node) { order = append(order, n.Name) })

	assert.Equal(t, []string{"root", "a", "a1", "b"}, order)
}

func TestSpanLineCount(t *testing.T) {
	assert.Equal(t, 1, Span{Start: 5, End: 5}.LineCount())
	assert.Equal(t, 11, Span{Start: 5, End: 15}.LineCount())
	assert.Equal(t, 0, Span{Start: 0, End: 0}.LineCount())
}
