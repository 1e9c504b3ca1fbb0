// Package compress implements the tree-budget compression engine: scoring,
// softmax allocation, level-of-detail rendering, U-curve line selection, and
// budget enforcement, orchestrated by CompressTree. It is format-agnostic:
// it manipulates only tree.Node attributes and invokes the Format contract.
package compress

import (
	"regexp"

	"github.com/nub-run/nub/internal/tree"
)

// OutputLine is one physical line of compressed output. LineNumber is
// fractional so synthetic content (fold markers and wrapped continuations)
// can be interleaved at its true source position.
type OutputLine struct {
	LineNumber float64
	Text       string

	// Score is inherited from the originating node and consulted only by
	// the hard-cap eviction pass in the Budget Enforcer; it never affects
	// ordering of surviving output.
	Score float64

	// IsFoldMarker distinguishes synthetic elision markers from real
	// content so the enforcer can apply "never evict first, may evict
	// once peers are gone" and "no two adjacent" rules.
	IsFoldMarker bool

	// IsStructural marks lines carrying a Class/Function/Heading
	// signature. These are evicted last under the hard cap.
	IsStructural bool

	// FoldedLines is the count of source lines represented by a fold
	// marker; zero for ordinary content lines.
	FoldedLines int
}

// Weights holds the intrinsic per-kind topological multipliers plus the
// scorer's blend weights.
type Weights struct {
	// Blend weights for the three scorer signals.
	Positional float64
	Grep       float64
	Topology   float64

	// Per-kind intrinsic weight defaults, used when a node's
	// IntrinsicWeight is unset (zero).
	ClassWeight    float64
	FunctionWeight float64
	HeadingWeight  float64
	ImportWeight   float64
	TextWeight     float64
}

// DefaultWeights returns nub's built-in scoring defaults.
func DefaultWeights() Weights {
	return Weights{
		Positional:     0.3,
		Grep:           1.0,
		Topology:       0.5,
		ClassWeight:    3.0,
		FunctionWeight: 2.0,
		HeadingWeight:  2.5,
		ImportWeight:   0.3,
		TextWeight:     1.0,
	}
}

// CharBudget is a (width, height) shape. Total is the character budget;
// Width additionally bounds per-line length.
type CharBudget struct {
	Width  uint32
	Height uint32
}

// Total returns width*height, the hard character cap.
func (b CharBudget) Total() int {
	return int(b.Width) * int(b.Height)
}

// Format is any collaborator that can turn a node into output lines at a
// given budget, or report that even its densest form does not fit. false
// replaces the original's None-sentinel: it tells the caller to fold.
type Format interface {
	// Name identifies the format for --type overrides and error messages.
	Name() string

	// Parse builds a tree.Node honoring the invariants in tree/node.go
	// from raw source bytes.
	Parse(source []byte) (*tree.Node, error)

	// Render returns 0..N output lines fitting budget characters total,
	// or false if even the densest form (Overview) exceeds budget.
	Render(node *tree.Node, budget int, opts Options) ([]OutputLine, bool)
}

// Options carries all engine tunables. CompressTree fills a zero
// Temperature, MinLineChars or Weights from DefaultOptions(); every other
// field, LineNumbers included, is used as given.
type Options struct {
	GrepPattern  *regexp.Regexp
	Temperature  float64
	MinLineChars int
	Weights      Weights
	LineNumbers  bool
	WrapWidth    int
	Deduplicate  bool

	// Limit is a hard character ceiling applied by the enforcer after
	// shape-driven allocation. Shape sets the geometry target; Limit, if
	// set, can only shrink the result further, never grow it.
	Limit int
}

// DefaultOptions returns the engine's built-in tunable defaults.
func DefaultOptions() Options {
	return Options{
		Temperature:  0.5,
		MinLineChars: 8,
		Weights:      DefaultWeights(),
		LineNumbers:  true,
	}
}
