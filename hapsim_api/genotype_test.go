package hapsim_api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenotypeCallString(t *testing.T) {
	tests := []struct {
		call     GenotypeCall
		expected string
	}{
		{GenotypeCall{Alleles: []uint8{0, 1}, Phased: true}, "0|1"},
		{GenotypeCall{Alleles: []uint8{1, 0}, Phased: true}, "1|0"},
		{GenotypeCall{Alleles: []uint8{0, 1}}, "0/1"},
		{GenotypeCall{Alleles: []uint8{1}, Phased: true}, "1"},
		{GenotypeCall{Alleles: []uint8{0, 0, 1, 1}}, "0/0/1/1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.call.String())
	}
	assert.Equal(t, 2, GenotypeCall{Alleles: []uint8{1, 0, 1}}.AltCount())
}

func TestAssemblePhasedKeepsCopyOrder(t *testing.T) {
	model := testModel(t, []float64{0.5})
	column := &Column{Rank: 0, Alleles: []uint8{1, 0, 0, 1, 1, 1}, AltCount: 4}

	row := NewAssembler(model, 3, 2, true).Assemble(column)
	require.Len(t, row.Calls, 3)
	assert.Equal(t, "1|0", row.Calls[0].String())
	assert.Equal(t, "0|1", row.Calls[1].String())
	assert.Equal(t, "1|1", row.Calls[2].String())
	assert.Equal(t, 4, row.AltCount)
	assert.Nil(t, row.Anchor)
	assert.Nil(t, row.Conditional)

	// the row must not share the sampler's buffer
	column.Alleles[0] = 0
	assert.Equal(t, uint8(1), row.Calls[0].Alleles[0])
}

func TestAssembleUnphasedSortsAlleles(t *testing.T) {
	model := testModel(t, []float64{0.5, 0.5}, LDObservation{I: 0, J: 1, R: 0.4})
	column := &Column{Rank: 1, Alleles: []uint8{1, 0, 0, 1, 1, 0}}

	row := NewAssembler(model, 2, 3, false).Assemble(column)
	assert.Equal(t, "0/0/1", row.Calls[0].String())
	assert.Equal(t, "0/1/1", row.Calls[1].String())
	assert.Equal(t, uint8(1), column.Alleles[0])

	require.NotNil(t, row.Anchor)
	assert.Equal(t, 0, row.Anchor.Rank)
	assert.Equal(t, 0.4, row.R)
	assert.NotNil(t, row.Conditional)
}

func TestGenotypeEncoderMatchesString(t *testing.T) {
	for _, phased := range []bool{true, false} {
		for _, ploidy := range []int{1, 2, 3, 4, 12} {
			encoder := NewGenotypeEncoder(ploidy, phased)
			for code := 0; code < 1<<min(ploidy, 8); code++ {
				alleles := make([]uint8, ploidy)
				for i := range alleles {
					alleles[i] = uint8(code>>i) & 1
				}
				if !phased {
					canonicalize(alleles)
				}
				call := GenotypeCall{Alleles: alleles, Phased: phased}
				assert.Equal(t, call.String(), encoder.Encode(call), "ploidy %d phased %v", ploidy, phased)
			}
		}
	}
}
