package hapsim_api

import (
	"strings"
)

// Ploidies up to this size get a precomputed phased GT lookup table
const maxLookupPloidy = 10

// Assembler turns sampled columns into per-sample genotype calls
type Assembler struct {
	model   *Model
	samples int
	ploidy  int
	phased  bool
}

func NewAssembler(model *Model, samples, ploidy int, phased bool) *Assembler {
	return &Assembler{
		model:   model,
		samples: samples,
		ploidy:  ploidy,
		phased:  phased,
	}
}

// Assemble groups the column into one call per sample. The row owns a copy
// of the alleles, the column may still be read by the sampler.
func (a *Assembler) Assemble(column *Column) *Row {
	alleles := make([]uint8, len(column.Alleles))
	copy(alleles, column.Alleles)

	row := &Row{
		Variant:        a.model.Table.Variant(column.Rank),
		Calls:          make([]GenotypeCall, a.samples),
		AltCount:       column.AltCount,
		AnchorAltCount: column.AnchorAltCount,
		JointAltCount:  column.JointAltCount,
	}
	if anchorRank, conditional := a.model.Conditional(column.Rank); anchorRank != NoAnchor {
		row.Anchor = a.model.Table.Variant(anchorRank)
		row.Conditional = conditional
		_, row.R = a.model.Anchors.Anchor(column.Rank)
	}

	for s := range row.Calls {
		call := alleles[s*a.ploidy : (s+1)*a.ploidy : (s+1)*a.ploidy]
		if !a.phased {
			canonicalize(call)
		}
		row.Calls[s] = GenotypeCall{Alleles: call, Phased: a.phased}
	}
	return row
}

// canonicalize sorts biallelic alleles ascending in place
func canonicalize(alleles []uint8) {
	alt := 0
	for _, allele := range alleles {
		alt += int(allele)
	}
	ref := len(alleles) - alt
	for i := range alleles {
		if i < ref {
			alleles[i] = 0
		} else {
			alleles[i] = 1
		}
	}
}

// AltCount returns the number of alternate alleles in the call
func (c GenotypeCall) AltCount() int {
	n := 0
	for _, allele := range c.Alleles {
		n += int(allele)
	}
	return n
}

// String renders the call as a VCF GT value
func (c GenotypeCall) String() string {
	sep := "/"
	if c.Phased {
		sep = "|"
	}
	var b strings.Builder
	for i, allele := range c.Alleles {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteByte('0' + allele)
	}
	return b.String()
}

// GenotypeEncoder renders calls of a fixed ploidy as GT strings, using
// lookup tables where the ploidy allows it
type GenotypeEncoder struct {
	ploidy   int
	phased   bool
	byCount  []string
	byAllele []string
}

func NewGenotypeEncoder(ploidy int, phased bool) *GenotypeEncoder {
	e := &GenotypeEncoder{ploidy: ploidy, phased: phased}
	if !phased {
		e.byCount = make([]string, ploidy+1)
		for alt := 0; alt <= ploidy; alt++ {
			call := make([]uint8, ploidy)
			for i := ploidy - alt; i < ploidy; i++ {
				call[i] = 1
			}
			e.byCount[alt] = GenotypeCall{Alleles: call}.String()
		}
		return e
	}
	if ploidy <= maxLookupPloidy {
		e.byAllele = make([]string, 1<<ploidy)
		for code := range e.byAllele {
			call := make([]uint8, ploidy)
			for i := range call {
				call[i] = uint8(code>>(ploidy-1-i)) & 1
			}
			e.byAllele[code] = GenotypeCall{Alleles: call, Phased: true}.String()
		}
	}
	return e
}

// Encode returns the GT string of a call
func (e *GenotypeEncoder) Encode(call GenotypeCall) string {
	if e.byCount != nil {
		return e.byCount[call.AltCount()]
	}
	if e.byAllele != nil {
		code := 0
		for _, allele := range call.Alleles {
			code = code<<1 | int(allele)
		}
		return e.byAllele[code]
	}
	return call.String()
}
