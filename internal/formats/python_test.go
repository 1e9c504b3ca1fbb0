package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nub-run/nub/internal/tree"
)

func TestPython_CollapsesImportsIntoOneSummaryNode(t *testing.T) {
	src := "import os\nimport sys\nfrom typing import List\n\ndef main():\n    pass\n"
	root, err := NewPython().Parse([]byte(src))
	require.NoError(t, err)

	require.NotEmpty(t, root.Children)
	imports := root.Children[0]
	assert.Equal(t, tree.Import, imports.Kind)
	assert.Contains(t, imports.Signature, "3 imports")
	assert.Equal(t, pyImportSummary, imports.IntrinsicWeight)
}

func TestPython_FunctionVsMethodWeightDiffers(t *testing.T) {
	src := "def top_level():\n    pass\n\nclass Foo:\n    def method(self):\n        pass\n"
	root, err := NewPython().Parse([]byte(src))
	require.NoError(t, err)

	var fn, class *tree.Node
	for _, c := range root.Children {
		if c.Name == "top_level" {
			fn = c
		}
		if c.Name == "Foo" {
			class = c
		}
	}
	require.NotNil(t, fn)
	require.NotNil(t, class)
	assert.Equal(t, pyFunctionWeight, fn.IntrinsicWeight)

	require.Len(t, class.Children, 1)
	assert.Equal(t, pyMethodWeight, class.Children[0].IntrinsicWeight)
	assert.Equal(t, pyClassWeight, class.IntrinsicWeight)
}

func TestPython_ConstantAndAnnotationWeights(t *testing.T) {
	src := "MAX_SIZE = 100\ncount: int = 0\n"
	root, err := NewPython().Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
	assert.Equal(t, "MAX_SIZE", root.Children[0].Name)
	assert.Equal(t, pyConstantWeight, root.Children[0].IntrinsicWeight)
	assert.Equal(t, "count", root.Children[1].Name)
	assert.Equal(t, pyAnnotationWeight, root.Children[1].IntrinsicWeight)
}

func TestPython_ClassDocstringInlinedIntoSignature(t *testing.T) {
	src := "class Foo:\n    \"\"\"Does a thing.\"\"\"\n\n    def bar(self):\n        pass\n"
	root, err := NewPython().Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	assert.Contains(t, root.Children[0].Signature, "Does a thing.")
}

func TestPython_EmptySourceYieldsEmptyModule(t *testing.T) {
	root, err := NewPython().Parse([]byte("   \n\n"))
	require.NoError(t, err)
	assert.Empty(t, root.Children)
}
