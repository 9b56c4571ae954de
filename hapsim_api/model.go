package hapsim_api

import "math"

// Conditional is the distribution of a target variant given the allele
// sampled at its anchor
type Conditional struct {
	// P(target alt | anchor alt)
	GivenAlt float64

	// P(target alt | anchor ref)
	GivenRef float64

	// P(anchor alt, target alt) after clipping
	Joint float64

	// Whether the moment-matched joint probability fell outside the
	// region allowed by both marginals
	Clipped bool

	// The correlation implied by Joint, equal to the input r unless clipped
	EffectiveR float64
}

// NewConditional derives the conditional distribution of a target from the
// anchor frequency, the target frequency and their correlation. The joint
// probability is moment matched and clipped to the feasible region, which
// keeps both marginals exact and attenuates r near the boundary.
func NewConditional(pAnchor, pTarget, r float64) Conditional {
	variance := pAnchor * (1 - pAnchor) * pTarget * (1 - pTarget)
	cov := r * math.Sqrt(variance)
	lower := math.Max(0, pAnchor+pTarget-1)
	upper := math.Min(pAnchor, pTarget)

	proposed := pAnchor*pTarget + cov
	joint := math.Min(math.Max(proposed, lower), upper)

	c := Conditional{
		Joint:   joint,
		Clipped: variance > 0 && (proposed < lower || proposed > upper),
	}
	if variance > 0 {
		c.EffectiveR = (joint - pAnchor*pTarget) / math.Sqrt(variance)
	}

	if pTarget == 0 || pTarget == 1 {
		c.GivenAlt, c.GivenRef = pTarget, pTarget
		return c
	}

	// A monomorphic anchor only ever reaches one branch, the other is left
	// at the marginal
	c.GivenAlt, c.GivenRef = pTarget, pTarget
	if pAnchor > 0 {
		c.GivenAlt = clamp01(joint / pAnchor)
	}
	if pAnchor < 1 {
		c.GivenRef = clamp01((pTarget - joint) / (1 - pAnchor))
	}
	return c
}

// Probability returns P(target alt) given the anchor allele
func (c *Conditional) Probability(anchorAllele uint8) float64 {
	if anchorAllele == 1 {
		return c.GivenAlt
	}
	return c.GivenRef
}

func clamp01(p float64) float64 {
	return math.Min(math.Max(p, 0), 1)
}

// Model bundles the variants, their anchors and the cached conditionals.
// It is safe for concurrent reads.
type Model struct {
	Table        *FrequencyTable
	Anchors      *AnchorForest
	conditionals []Conditional
	clipped      int
}

// NewModel computes the conditional of every anchored rank once
func NewModel(table *FrequencyTable, anchors *AnchorForest) *Model {
	m := &Model{
		Table:        table,
		Anchors:      anchors,
		conditionals: make([]Conditional, table.Len()),
	}
	for j := 0; j < table.Len(); j++ {
		i, r := anchors.Anchor(j)
		if i == NoAnchor {
			continue
		}
		m.conditionals[j] = NewConditional(table.Variant(i).Frequency, table.Variant(j).Frequency, r)
		if m.conditionals[j].Clipped {
			m.clipped++
		}
	}
	return m
}

// Len returns the number of variants in the model
func (m *Model) Len() int {
	return m.Table.Len()
}

// Conditional returns the anchor of rank j and its conditional, or NoAnchor
// and nil
func (m *Model) Conditional(j int) (int, *Conditional) {
	i, _ := m.Anchors.Anchor(j)
	if i == NoAnchor {
		return NoAnchor, nil
	}
	return i, &m.conditionals[j]
}

// Clipped returns the number of conditionals whose joint probability was clipped
func (m *Model) Clipped() int {
	return m.clipped
}
