package formats

import (
	"regexp"
	"strings"

	"github.com/nub-run/nub/internal/compress"
	"github.com/nub-run/nub/internal/tree"
)

// conversationTurnPattern splits a log into turns on "Speaker: " markers.
var conversationTurnPattern = regexp.MustCompile(`(?m)^(Human|Assistant|User|Bot|AI):\s*`)

// Conversation splits a dialog log into per-turn sections. Preserving the
// system prompt, the first query, and the final resolution while folding
// intermediate debugging loops falls naturally out of the engine's
// existing positional U-curve scoring over sibling turns, so no
// special-casing is needed here beyond building one section per turn, plus
// one "preamble" section for any text before the first turn marker.
type Conversation struct{}

func NewConversation() *Conversation { return &Conversation{} }

func (Conversation) Name() string         { return "conversation" }
func (Conversation) Extensions() []string { return []string{".chat"} }

func (Conversation) Detect(content []byte) bool {
	return len(conversationTurnPattern.FindAll(content, -1)) >= 2
}

func (Conversation) Parse(source []byte) (*tree.Node, error) {
	root := &tree.Node{Kind: tree.Root, Name: "root"}
	text := string(source)
	if strings.TrimSpace(text) == "" {
		return root, nil
	}

	locs := conversationTurnPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return NewText().Parse(source)
	}

	lineOf := func(offset int) int {
		return 1 + strings.Count(text[:offset], "\n")
	}

	if pre := strings.TrimSpace(text[:locs[0][0]]); pre != "" {
		preStart := lineOf(strings.Index(text, pre))
		root.AddChild(&tree.Node{
			Kind:      tree.Section,
			Name:      "preamble",
			Signature: firstLine(pre),
			Preview:   pre,
			BodyLines: splitLines(pre, preStart),
			LineSpan:  tree.Span{Start: float64(preStart), End: float64(lineOf(locs[0][0]) - 1)},
		})
	}

	for i, loc := range locs {
		start := loc[0]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		speaker := text[loc[2]:loc[3]]
		body := strings.TrimSpace(text[loc[1]:end])
		startLine, endLine := lineOf(start), lineOf(end)

		turn := &tree.Node{
			Kind:      tree.Section,
			Name:      speaker,
			Signature: speaker + ": " + firstLine(body),
			Preview:   body,
			BodyLines: splitLines(body, startLine+1),
			LineSpan:  tree.Span{Start: float64(startLine), End: float64(endLine)},
		}
		root.AddChild(turn)
	}
	root.RecalculateSpan()
	return root, nil
}

func (Conversation) Render(node *tree.Node, budget int, opts compress.Options) ([]compress.OutputLine, bool) {
	return compress.Render(node, budget, opts)
}
