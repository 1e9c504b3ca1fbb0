package compress

import (
	"math"
	"sort"
)

// maxFloorIterations bounds the minimum-line-floor redistribution loop. A
// fixed small ceiling is simpler than tracking log2(n) and equivalent in
// practice since n rarely exceeds a few hundred children.
const maxFloorIterations = 12

// allocation is one child's outcome from the softmax allocator: either a
// character share sufficient to render, or a fold (the child's budget fell
// below MinLineChars and it was dropped from rendering).
type allocation struct {
	Budget int
	Folded bool
}

// softmaxAllocate distributes budget across children scored by scores:
//  1. max-normalize for numerical stability
//  2. temperature-scaled softmax
//  3. floor-then-largest-remainder proportional split
//  4. minimum-line-floor: children whose share falls under minLineChars are
//     folded and dropped from the active set; the whole budget is then
//     resplit across the smaller active set, iterating until stable.
//
// Postcondition: sum of surviving Budget fields <= budget.
func softmaxAllocate(budget int, scores []float64, temperature float64, minLineChars int) []allocation {
	n := len(scores)
	if n == 0 {
		return nil
	}
	if temperature <= 0 {
		temperature = 0.5
	}

	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}
	result := make([]allocation, n)

	for iter := 0; iter < maxFloorIterations; iter++ {
		idx := activeIndices(active)
		if len(idx) == 0 {
			break
		}

		weights := softmaxWeights(scores, idx, temperature)
		shares := largestRemainderSplit(budget, weights)

		droppedAny := false
		for j, i := range idx {
			if shares[j] < minLineChars {
				result[i] = allocation{Budget: 0, Folded: true}
				active[i] = false
				droppedAny = true
				continue
			}
			result[i] = allocation{Budget: shares[j]}
		}

		if !droppedAny {
			break
		}
	}

	return result
}

// activeIndices returns indices still marked active, in ascending order.
func activeIndices(active []bool) []int {
	idx := make([]int, 0, len(active))
	for i, a := range active {
		if a {
			idx = append(idx, i)
		}
	}
	return idx
}

// softmaxWeights computes temperature-scaled softmax weights over the
// scores at the given indices, max-normalized first for stability.
func softmaxWeights(scores []float64, idx []int, temperature float64) []float64 {
	maxScore := 0.0
	for _, i := range idx {
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}
	if maxScore == 0 {
		maxScore = epsilon
	}

	exps := make([]float64, len(idx))
	sum := 0.0
	for j, i := range idx {
		normalized := scores[i] / maxScore
		e := math.Exp(normalized / temperature)
		exps[j] = e
		sum += e
	}
	if sum == 0 {
		sum = epsilon
	}
	weights := make([]float64, len(idx))
	for j := range idx {
		weights[j] = exps[j] / sum
	}
	return weights
}

// largestRemainderSplit distributes total across weights proportionally,
// flooring each share then handing out remainder units to the largest
// fractional parts, tie-broken by ascending index for determinism.
func largestRemainderSplit(total int, weights []float64) []int {
	n := len(weights)
	shares := make([]int, n)
	fracs := make([]float64, n)

	assigned := 0
	for i, w := range weights {
		exact := float64(total) * w
		floor := int(exact)
		shares[i] = floor
		fracs[i] = exact - float64(floor)
		assigned += floor
	}

	remainder := total - assigned
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fracs[order[a]] > fracs[order[b]]
	})
	for k := 0; k < remainder && k < n; k++ {
		shares[order[k]]++
	}
	return shares
}
