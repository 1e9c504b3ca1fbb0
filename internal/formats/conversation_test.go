package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_Detect(t *testing.T) {
	c := NewConversation()

	assert.True(t, c.Detect([]byte("Human: hi\nAssistant: hello\n")))
	assert.False(t, c.Detect([]byte("just some plain text\n")))
}

func TestConversation_SplitsIntoTurnsBySpeaker(t *testing.T) {
	src := "Human: what is 2+2?\nAssistant: it's 4\nHuman: thanks\n"
	root, err := NewConversation().Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, root.Children, 3)
	assert.Equal(t, "Human", root.Children[0].Name)
	assert.Contains(t, root.Children[0].Signature, "what is 2+2?")
	assert.Equal(t, "Assistant", root.Children[1].Name)
	assert.Equal(t, "Human", root.Children[2].Name)
}

func TestConversation_FallsBackToTextWithoutTurnMarkers(t *testing.T) {
	src := "no speaker markers here\njust prose\n"
	root, err := NewConversation().Parse([]byte(src))
	require.NoError(t, err)

	// falls back to Text's section-based split, not Conversation's turns
	require.Len(t, root.Children, 1)
	assert.NotContains(t, []string{"Human", "Assistant"}, root.Children[0].Name)
}

func TestConversation_EmptySourceYieldsEmptyRoot(t *testing.T) {
	root, err := NewConversation().Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, root.Children)
}
