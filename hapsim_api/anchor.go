package hapsim_api

import (
	"fmt"
	"math"
)

// NoAnchor marks a rank that is sampled from its marginal frequency
const NoAnchor = -1

// AnchorForest assigns every rank at most one earlier anchor rank. It is
// built once and only read during simulation.
type AnchorForest struct {
	anchor       []int
	r            []float64
	lastConsumer []int
	expiring     [][]int
	maxSpan      int
}

// BuildAnchorForest selects, for every target rank j, the observation (i, j)
// with i < j and the largest |r|. Ties go to the smallest distance j-i, then
// to the larger signed r. Observations further apart than maxDistance ranks
// are ignored when maxDistance is positive.
func BuildAnchorForest(nVariants int, observations []LDObservation, maxDistance int) (*AnchorForest, error) {
	forest := &AnchorForest{
		anchor:       make([]int, nVariants),
		r:            make([]float64, nVariants),
		lastConsumer: make([]int, nVariants),
		expiring:     make([][]int, nVariants),
	}
	for rank := range forest.anchor {
		forest.anchor[rank] = NoAnchor
		forest.lastConsumer[rank] = NoAnchor
	}

	for _, obs := range observations {
		i, j := obs.I, obs.J
		if i > j {
			i, j = j, i
		}
		if i < 0 || j >= nVariants {
			return nil, fmt.Errorf("%w: pair (%d, %d) with %d variants", ErrUnknownVariant, obs.I, obs.J, nVariants)
		}
		if i == j {
			return nil, fmt.Errorf("%w: rank %d", ErrSelfPair, i)
		}
		if math.IsNaN(obs.R) || obs.R < -1 || obs.R > 1 {
			return nil, fmt.Errorf("%w: pair (%d, %d) has r %v", ErrCorrelationRange, i, j, obs.R)
		}
		if maxDistance > 0 && j-i > maxDistance {
			continue
		}
		if forest.better(i, j, obs.R) {
			forest.anchor[j] = i
			forest.r[j] = obs.R
		}
	}

	for j, i := range forest.anchor {
		if i == NoAnchor {
			continue
		}
		if j > forest.lastConsumer[i] {
			forest.lastConsumer[i] = j
		}
		if j-i > forest.maxSpan {
			forest.maxSpan = j - i
		}
	}
	for i, last := range forest.lastConsumer {
		if last != NoAnchor {
			forest.expiring[last] = append(forest.expiring[last], i)
		}
	}

	return forest, nil
}

// better reports whether anchoring j on i with correlation r beats the
// current choice for j
func (f *AnchorForest) better(i, j int, r float64) bool {
	current := f.anchor[j]
	if current == NoAnchor {
		return true
	}
	abs, currentAbs := math.Abs(r), math.Abs(f.r[j])
	if abs != currentAbs {
		return abs > currentAbs
	}
	if j-i != j-current {
		return j-i < j-current
	}
	// same pair listed twice with opposite signs
	return r > f.r[j]
}

// Len returns the number of ranks in the forest
func (f *AnchorForest) Len() int {
	return len(f.anchor)
}

// Anchor returns the anchor of rank j and its correlation, or NoAnchor
func (f *AnchorForest) Anchor(j int) (int, float64) {
	return f.anchor[j], f.r[j]
}

// LastConsumer returns the largest rank anchored on i, or NoAnchor when no
// rank uses i
func (f *AnchorForest) LastConsumer(i int) int {
	return f.lastConsumer[i]
}

// Expiring returns the ranks whose last consumer is j
func (f *AnchorForest) Expiring(j int) []int {
	return f.expiring[j]
}

// MaxSpan returns the largest distance between a rank and its anchor
func (f *AnchorForest) MaxSpan() int {
	return f.maxSpan
}

// Anchored returns the number of ranks with an anchor
func (f *AnchorForest) Anchored() int {
	n := 0
	for _, a := range f.anchor {
		if a != NoAnchor {
			n++
		}
	}
	return n
}
