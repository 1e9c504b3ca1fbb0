package formats

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nub-run/nub/internal/tree"
)

func TestText_SplitsOnBlankLines(t *testing.T) {
	src := "para one line one\npara one line two\n\npara two\n"
	root, err := NewText().Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
	assert.Equal(t, tree.Section, root.Children[0].Kind)
	assert.Len(t, root.Children[0].Children, 2)
	assert.Len(t, root.Children[1].Children, 1)
}

func TestText_EmptySourceYieldsEmptyRoot(t *testing.T) {
	root, err := NewText().Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, root.Children)
}

func TestText_DefaultScoresApplyWhenZero(t *testing.T) {
	txt := &Text{}
	root, err := txt.Parse([]byte("only line"))
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	assert.Equal(t, 0.6, root.Children[0].IntrinsicWeight)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, 0.5, root.Children[0].Children[0].IntrinsicWeight)
}

func TestText_CustomScoresWireThrough(t *testing.T) {
	txt := NewTextWithScores(0.9, 0.2)
	root, err := txt.Parse([]byte("only line"))
	require.NoError(t, err)

	assert.Equal(t, 0.9, root.Children[0].IntrinsicWeight)
	assert.Equal(t, 0.2, root.Children[0].Children[0].IntrinsicWeight)
}

func TestCustomSeparator_SplitsOnLiteral(t *testing.T) {
	sep := NewCustomSeparator("---", nil)
	root, err := sep.Parse([]byte("first chunk\n---\nsecond chunk"))
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
	assert.Equal(t, "C1", root.Children[0].Name)
	assert.Equal(t, "C2", root.Children[1].Name)
}

func TestCustomSeparator_SplitsOnRegex(t *testing.T) {
	sep := NewCustomSeparator("", regexp.MustCompile(`\d+\.`))
	root, err := sep.Parse([]byte("1. first\n2. second"))
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
}

func TestCustomSeparator_EmptySourceYieldsEmptyRoot(t *testing.T) {
	sep := NewCustomSeparator(",", nil)
	root, err := sep.Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, root.Children)
}
