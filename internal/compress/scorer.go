package compress

import (
	"math"
	"strings"

	"github.com/nub-run/nub/internal/tree"
)

// epsilon floors every score away from zero so softmax never collapses on
// an all-zero input.
const epsilon = 1e-6

// positionalExponent is beta in the U-curve line selector's weighting
// function (ucurveWeight); the sibling-position scorer uses a cosine form
// and does not read it.
const positionalExponent = 2.0

// positionalScore returns a U-shaped weight for sibling index i out of N,
// high at the sequence's start and end and lowest at its midpoint. Uses a
// cosine sweep rather than the two-sided power form so the curve is smooth
// across the whole range instead of mirrored at the midpoint: normalized
// position sweeps a full 2*pi so cos returns to its peak at both ends.
func positionalScore(i, n int) float64 {
	if n <= 1 {
		return 1.0
	}
	normalized := float64(i) / float64(n-1)
	return (math.Cos(2*math.Pi*normalized) + 1) / 2
}

// topologicalScore weights shallower, format-privileged nodes more heavily.
func topologicalScore(intrinsicWeight float64, depth int) float64 {
	return intrinsicWeight / (1 + float64(depth))
}

// grepBoost converts a match count (from countMatches, which covers a node's
// own body plus every descendant's body) into a multiplicative boost.
// Non-matching nodes are never zeroed, only relatively smaller.
func grepBoost(n *tree.Node, k float64, matches int) float64 {
	if matches == 0 {
		return 1.0
	}
	return 1.0 + k*math.Log(1+float64(matches))
}

// countMatches counts grep-pattern hits in n's own body lines plus every
// descendant's, so a container scores for matches buried in its children.
func countMatches(n *tree.Node, matchLine func(string) bool) int {
	total := 0
	n.DepthFirst(func(cur *tree.Node) {
		for _, l := range cur.BodyLines {
			if matchLine(l.Text) {
				total++
			}
		}
		if cur.Signature != "" && matchLine(cur.Signature) {
			total++
		}
	})
	return total
}

// intrinsicWeightFor resolves a node's weight, falling back to the format
// defaults in w when the node itself left IntrinsicWeight unset (zero).
func intrinsicWeightFor(n *tree.Node, w Weights) float64 {
	if n.IntrinsicWeight != 0 {
		return n.IntrinsicWeight
	}
	switch n.Kind {
	case tree.Container:
		return w.ClassWeight
	case tree.Definition:
		return w.FunctionWeight
	case tree.Section:
		return w.HeadingWeight
	case tree.Import:
		return w.ImportWeight
	default:
		return w.TextWeight
	}
}

// scoreChildren computes the final importance score for each of parent's
// children: score = grepBoost * (weights.Positional*P + weights.Topology*T),
// floored at epsilon. Order of the returned slice matches parent.Children.
func scoreChildren(parent *tree.Node, opts Options) []float64 {
	n := len(parent.Children)
	scores := make([]float64, n)

	var matchLine func(string) bool
	if opts.GrepPattern != nil {
		matchLine = opts.GrepPattern.MatchString
	}

	for i, child := range parent.Children {
		p := positionalScore(i, n)
		t := topologicalScore(intrinsicWeightFor(child, opts.Weights), child.Depth)

		boost := 1.0
		if matchLine != nil {
			matches := countMatches(child, matchLine)
			boost = grepBoost(child, opts.Weights.Grep, matches)
		}

		s := boost * (opts.Weights.Positional*p + opts.Weights.Topology*t)
		if s < epsilon {
			s = epsilon
		}
		scores[i] = s
	}
	return scores
}

// tokenize3grams splits text into lowercase word tokens for the enforcer's
// 3-gram dedup pass.
func tokenize3grams(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
