package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nub-run/nub/internal/config"
)

func TestRegistry_ByName(t *testing.T) {
	r := NewRegistry()

	f, ok := r.ByName("python")
	require.True(t, ok)
	assert.Equal(t, "python", f.Name())

	_, ok = r.ByName("does-not-exist")
	assert.False(t, ok)
}

func TestRegistry_ByExtension(t *testing.T) {
	r := NewRegistry()

	f, ok := r.ByExtension(".py")
	require.True(t, ok)
	assert.Equal(t, "python", f.Name())

	f, ok = r.ByExtension("md")
	require.True(t, ok)
	assert.Equal(t, "markdown", f.Name())
}

func TestRegistry_DetectByExtension(t *testing.T) {
	r := NewRegistry()

	match, ok := r.Detect("main.py", []byte("def f(): pass"))
	require.True(t, ok)
	assert.Equal(t, "python", match.Format.Name())
	assert.Equal(t, 1.0, match.Confidence)
}

func TestRegistry_DetectByContentWhenNoExtension(t *testing.T) {
	r := NewRegistry()

	match, ok := r.Detect("", []byte("[1] root\nfoo\n[2] child\nbar\n[3] leaf\n"))
	require.True(t, ok)
	assert.Equal(t, "mindmap", match.Format.Name())
}

func TestRegistry_DetectFallsThroughToFalse(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Detect("", []byte("plain text with no distinguishing markers"))
	assert.False(t, ok)
}

func TestNewRegistryWithConfig_WiresTextScores(t *testing.T) {
	cfg := config.Defaults()
	cfg.Text.SectionScore = 0.75
	cfg.Text.LineScore = 0.25

	r := NewRegistryWithConfig(cfg)
	f, ok := r.ByName("text")
	require.True(t, ok)

	root, err := f.Parse([]byte("only line"))
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, 0.75, root.Children[0].IntrinsicWeight)
}
