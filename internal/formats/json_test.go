package formats

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nub-run/nub/internal/tree"
)

func TestJSON_KeepsEveryTopLevelKey(t *testing.T) {
	src := `{"a": 1, "b": "two", "c": true}`
	root, err := NewJSON().Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, root.Children, 3)
	names := []string{root.Children[0].Name, root.Children[1].Name, root.Children[2].Name}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names)
}

func TestJSON_NestedObjectBecomesSection(t *testing.T) {
	src := `{"outer": {"inner": 1}}`
	root, err := NewJSON().Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	outer := root.Children[0]
	assert.Equal(t, tree.Section, outer.Kind)
	require.Len(t, outer.Children, 1)
	assert.Equal(t, "inner", outer.Children[0].Name)
}

func TestJSON_ShortArrayKeepsAllElements(t *testing.T) {
	src := `{"items": [1, 2, 3]}`
	root, err := NewJSON().Parse([]byte(src))
	require.NoError(t, err)

	arr := root.Children[0]
	assert.Equal(t, "items[]", arr.Name)
	assert.Len(t, arr.Children, 3)
}

func TestJSON_LongArraySampledHeadTail(t *testing.T) {
	var items []string
	for i := 0; i < 20; i++ {
		items = append(items, fmt.Sprintf("%d", i))
	}
	src := fmt.Sprintf(`{"items": [%s]}`, strings.Join(items, ","))

	root, err := NewJSON().Parse([]byte(src))
	require.NoError(t, err)

	arr := root.Children[0]
	require.Len(t, arr.Children, 2*arraySampleEdge+1)
	assert.Equal(t, "items[...]", arr.Children[arraySampleEdge].Name)
	assert.Contains(t, arr.Children[arraySampleEdge].Signature, "10 more elements")
}

func TestJSON_InvalidJSONReturnsParseError(t *testing.T) {
	_, err := NewJSON().Parse([]byte("{not valid"))
	assert.Error(t, err)
}
