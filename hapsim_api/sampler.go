package hapsim_api

import (
	"math/rand/v2"

	"github.com/exascience/pargo/parallel"
)

// Below this many haplotypes a column is drawn on the calling goroutine
const minParallelHaplotypes = 2048

// Sampler walks the variants in rank order and draws one allele per
// (sample, haplotype copy). Only columns that a later rank still anchors on
// are kept in the sliding window.
type Sampler struct {
	sim    *Simulation
	rngs   []*rand.Rand
	window map[int][]uint8
	next   int
	peak   int
}

type tally struct {
	alt       int
	anchorAlt int
	joint     int
}

// NewSampler prepares a sampler for the simulation. Every sample gets its own
// random stream derived from the seed, so the draws don't depend on how the
// samples are split across workers.
func NewSampler(sim *Simulation) *Sampler {
	rngs := make([]*rand.Rand, sim.Samples)
	for s := range rngs {
		rngs[s] = rand.New(rand.NewPCG(sim.Seed, uint64(s)))
	}
	return &Sampler{
		sim:    sim,
		rngs:   rngs,
		window: map[int][]uint8{},
	}
}

// Next draws the next rank and returns its column. It returns false once
// every rank has been drawn.
func (s *Sampler) Next() (*Column, bool) {
	model := s.sim.Model
	j := s.next
	if j >= model.Len() {
		return nil, false
	}
	s.next++

	column := &Column{
		Rank:    j,
		Alleles: make([]uint8, s.sim.Samples*s.sim.Ploidy),
	}

	anchorRank, conditional := model.Conditional(j)
	var anchor []uint8
	if anchorRank != NoAnchor {
		anchor = s.window[anchorRank]
	}
	t := s.draw(column.Alleles, model.Table.Variant(j).Frequency, conditional, anchor)
	column.AltCount = t.alt
	column.AnchorAltCount = t.anchorAlt
	column.JointAltCount = t.joint

	if model.Anchors.LastConsumer(j) != NoAnchor {
		s.window[j] = column.Alleles
	}
	if len(s.window) > s.peak {
		s.peak = len(s.window)
	}
	for _, i := range model.Anchors.Expiring(j) {
		delete(s.window, i)
	}

	return column, true
}

// Resident returns the number of columns currently held in the window
func (s *Sampler) Resident() int {
	return len(s.window)
}

// PeakResident returns the largest number of columns the window has held
func (s *Sampler) PeakResident() int {
	return s.peak
}

func (s *Sampler) draw(out []uint8, p float64, conditional *Conditional, anchor []uint8) tally {
	samples := s.sim.Samples
	workers := s.sim.Workers
	if workers > samples {
		workers = samples
	}
	if workers <= 1 || len(out) < minParallelHaplotypes {
		return s.drawRange(out, p, conditional, anchor, 0, samples)
	}

	return parallel.RangeReduce(0, samples, workers, func(lo, hi int) interface{} {
		return s.drawRange(out, p, conditional, anchor, lo, hi)
	}, mergeTallies).(tally)
}

func mergeTallies(x, y interface{}) interface{} {
	a, b := x.(tally), y.(tally)
	return tally{
		alt:       a.alt + b.alt,
		anchorAlt: a.anchorAlt + b.anchorAlt,
		joint:     a.joint + b.joint,
	}
}

// drawRange fills the haplotypes of samples [lo, hi). Distinct ranges touch
// distinct parts of out and distinct random streams.
func (s *Sampler) drawRange(out []uint8, p float64, conditional *Conditional, anchor []uint8, lo, hi int) tally {
	var t tally
	ploidy := s.sim.Ploidy
	for sample := lo; sample < hi; sample++ {
		rng := s.rngs[sample]
		for idx := sample * ploidy; idx < (sample+1)*ploidy; idx++ {
			prob := p
			var anchorAllele uint8
			if anchor != nil {
				anchorAllele = anchor[idx]
				prob = conditional.Probability(anchorAllele)
				t.anchorAlt += int(anchorAllele)
			}
			if rng.Float64() < prob {
				out[idx] = 1
				t.alt++
				t.joint += int(anchorAllele)
			}
		}
	}
	return t
}
