package hapsim_api

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func drainSampler(s *Sampler) []*Column {
	columns := []*Column{}
	for {
		column, ok := s.Next()
		if !ok {
			return columns
		}
		columns = append(columns, column)
	}
}

func TestSamplerWindowStaysWithinSpan(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	n := 200
	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = rng.Float64()
	}
	observations := []LDObservation{}
	for k := 0; k < 400; k++ {
		i := rng.IntN(n - 1)
		j := i + 1 + rng.IntN(min(12, n-1-i))
		observations = append(observations, LDObservation{I: i, J: j, R: 2*rng.Float64() - 1})
	}
	model := testModel(t, freqs, observations...)
	sim := testSimulation(model, 10, 2)

	sampler := NewSampler(sim)
	for {
		column, ok := sampler.Next()
		if !ok {
			break
		}
		assert.LessOrEqual(t, sampler.Resident(), model.Anchors.MaxSpan()+1, "rank %d", column.Rank)
	}
	assert.LessOrEqual(t, sampler.PeakResident(), model.Anchors.MaxSpan()+1)
	assert.Greater(t, sampler.PeakResident(), 0)
	assert.Equal(t, 0, sampler.Resident())
}

func TestSamplerVisitsEveryRankOnce(t *testing.T) {
	model := testModel(t, []float64{0.2, 0.5, 0.7}, LDObservation{I: 0, J: 2, R: 0.3})
	columns := drainSampler(NewSampler(testSimulation(model, 5, 3)))

	require.Len(t, columns, 3)
	for rank, column := range columns {
		assert.Equal(t, rank, column.Rank)
		assert.Len(t, column.Alleles, 15)
	}
}

func TestSamplerMonomorphicVariants(t *testing.T) {
	model := testModel(t, []float64{0.5, 0, 1},
		LDObservation{I: 0, J: 1, R: 0.8},
		LDObservation{I: 0, J: 2, R: -0.8},
	)
	columns := drainSampler(NewSampler(testSimulation(model, 500, 2)))

	assert.Equal(t, 0, columns[1].AltCount)
	assert.Equal(t, 1000, columns[2].AltCount)
	for idx := range columns[1].Alleles {
		assert.Equal(t, uint8(0), columns[1].Alleles[idx])
		assert.Equal(t, uint8(1), columns[2].Alleles[idx])
	}
}

func TestSamplerIndependentOfWorkers(t *testing.T) {
	model := testModel(t, []float64{0.3, 0.4, 0.6, 0.05},
		LDObservation{I: 0, J: 1, R: 0.5},
		LDObservation{I: 1, J: 2, R: -0.4},
		LDObservation{I: 0, J: 3, R: 0.2},
	)

	serial := testSimulation(model, 3000, 2)
	serial.Workers = 1
	parallel := testSimulation(model, 3000, 2)
	parallel.Workers = 4

	expected := drainSampler(NewSampler(serial))
	actual := drainSampler(NewSampler(parallel))
	require.Len(t, actual, len(expected))
	for rank := range expected {
		assert.Equal(t, expected[rank].Alleles, actual[rank].Alleles, "rank %d", rank)
		assert.Equal(t, expected[rank].AltCount, actual[rank].AltCount)
		assert.Equal(t, expected[rank].JointAltCount, actual[rank].JointAltCount)
	}
}

func TestSamplerSeedChangesDraws(t *testing.T) {
	model := testModel(t, []float64{0.5})
	a := testSimulation(model, 100, 2)
	b := testSimulation(model, 100, 2)
	b.Seed = 43

	assert.NotEqual(t, drainSampler(NewSampler(a))[0].Alleles, drainSampler(NewSampler(b))[0].Alleles)
}

func TestSamplerRecoversMarginal(t *testing.T) {
	model := testModel(t, []float64{0.3})
	column := drainSampler(NewSampler(testSimulation(model, 20000, 2)))[0]

	values := make([]float64, len(column.Alleles))
	for idx, allele := range column.Alleles {
		values[idx] = float64(allele)
	}
	assert.InDelta(t, 0.3, stat.Mean(values, nil), 0.01)
	assert.Equal(t, column.AltCount, int(stat.Mean(values, nil)*float64(len(values))+0.5))
	assert.Equal(t, 0, column.AnchorAltCount)
	assert.Equal(t, 0, column.JointAltCount)
}

func TestSamplerCounts(t *testing.T) {
	model := testModel(t, []float64{0.4, 0.6}, LDObservation{I: 0, J: 1, R: 0.7})
	columns := drainSampler(NewSampler(testSimulation(model, 1000, 2)))

	anchor, target := columns[0], columns[1]
	joint := 0
	for idx := range target.Alleles {
		if anchor.Alleles[idx] == 1 && target.Alleles[idx] == 1 {
			joint++
		}
	}
	assert.Equal(t, anchor.AltCount, target.AnchorAltCount)
	assert.Equal(t, joint, target.JointAltCount)
}
