package hapsim_api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testTable builds a single contig table with one variant per frequency,
// ranked in argument order
func testTable(t *testing.T, freqs ...float64) *FrequencyTable {
	t.Helper()
	variants := make([]Variant, len(freqs))
	for i, f := range freqs {
		key := VariantKey{Chromosome: "1", Pos: int64(100 * (i + 1)), Ref: "A", Alt: "G"}
		variants[i] = Variant{VariantKey: key, Id: key.String(), Frequency: f}
	}
	table, err := NewFrequencyTable(variants)
	require.NoError(t, err)
	return table
}

func testModel(t *testing.T, freqs []float64, observations ...LDObservation) *Model {
	t.Helper()
	table := testTable(t, freqs...)
	forest, err := BuildAnchorForest(table.Len(), observations, 0)
	require.NoError(t, err)
	return NewModel(table, forest)
}

func testSimulation(model *Model, samples, ploidy int) *Simulation {
	return &Simulation{
		Model:   model,
		Samples: samples,
		Ploidy:  ploidy,
		Phased:  true,
		Seed:    42,
		Workers: 4,
		Buffer:  8,
	}
}

type rowCollector struct {
	rows []*Row
}

func (c *rowCollector) Emit(row *Row) error {
	c.rows = append(c.rows, row)
	return nil
}

// copyValues returns haplotype copy c of every sample as 0/1 floats
func copyValues(row *Row, c int) []float64 {
	values := make([]float64, len(row.Calls))
	for s, call := range row.Calls {
		values[s] = float64(call.Alleles[c])
	}
	return values
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
