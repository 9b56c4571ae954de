package hapsim_api

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRow(t *testing.T) *Row {
	t.Helper()
	model := testModel(t, []float64{0.25, 0.5}, LDObservation{I: 0, J: 1, R: 0.2})
	column := &Column{Rank: 1, Alleles: []uint8{0, 1, 1, 1}, AltCount: 3, AnchorAltCount: 2, JointAltCount: 1}
	return NewAssembler(model, 2, 2, true).Assemble(column)
}

func TestVcfWriterHeader(t *testing.T) {
	var buf bytes.Buffer
	vw := NewVcfWriter(&buf, 2, true)
	require.NoError(t, vw.WriteHeader(VcfHeader{
		Contigs: []string{"1", "2"},
		Samples: []string{"s1", "s2"},
	}))

	expected := strings.Join([]string{
		"##fileformat=VCFv4.2",
		"##source=hapsim",
		"##FILTER=<ID=PASS,Description=\"All filters passed\">",
		"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">",
		"##contig=<ID=1>",
		"##contig=<ID=2>",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ts1\ts2",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())

	buf.Reset()
	vw = NewVcfWriter(&buf, 2, true)
	require.NoError(t, vw.WriteHeader(VcfHeader{Date: true}))
	assert.Regexp(t, `(?m)^##fileDate=\d{8}$`, buf.String())
}

func TestVcfWriterEmit(t *testing.T) {
	var buf bytes.Buffer
	vw := NewVcfWriter(&buf, 2, true)
	require.NoError(t, vw.Emit(testRow(t)))
	require.NoError(t, vw.Flush())
	assert.Equal(t, "1\t200\t1_200_A_G\tA\tG\t.\t.\t.\tGT\t0|1\t1|1\n", buf.String())

	buf.Reset()
	vw = NewVcfWriter(&buf, 2, true)
	vw.IdTemplate = "$CHROM:$POS"
	require.NoError(t, vw.Emit(testRow(t)))
	require.NoError(t, vw.Flush())
	assert.True(t, strings.HasPrefix(buf.String(), "1\t200\t1:200\t"))
}

func TestReportWriter(t *testing.T) {
	var buf bytes.Buffer
	rw := NewReportWriter(&buf, 4)
	require.NoError(t, rw.WriteHeader())

	row := testRow(t)
	require.NoError(t, rw.Emit(row))
	unanchored := *row
	unanchored.Variant = row.Anchor
	unanchored.Anchor = nil
	unanchored.Conditional = nil
	unanchored.AltCount = 2
	require.NoError(t, rw.Emit(&unanchored))
	require.NoError(t, rw.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID\tRANK\tFREQ\tSIM_FREQ\tANCHOR_ID\tR\tEFFECTIVE_R\tSIM_R\tCLIPPED", lines[0])

	// anchor alleles 1,1,0,0 against target 0,1,1,1
	fields := strings.Split(lines[1], "\t")
	assert.Equal(t, []string{"1_200_A_G", "1", "0.5", "0.75", "1_100_A_G", "0.2", "0.2"}, fields[:7])
	assert.Equal(t, formatFloat(SimulatedCorrelation(2, 3, 1, 4)), fields[7])
	assert.Equal(t, "false", fields[8])

	assert.Equal(t, "1_100_A_G\t0\t0.25\t0.5\t.\t.\t.\t.\t.", lines[2])
}

func TestSimulatedCorrelation(t *testing.T) {
	assert.InDelta(t, 1.0, SimulatedCorrelation(2, 2, 2, 4), 1e-12)
	assert.InDelta(t, -1.0, SimulatedCorrelation(2, 2, 0, 4), 1e-12)
	assert.Equal(t, "NA", formatFloat(SimulatedCorrelation(0, 2, 0, 4)))
	assert.Equal(t, "NA", formatFloat(SimulatedCorrelation(2, 4, 2, 4)))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestVcfWriterReportsWriteErrors(t *testing.T) {
	vw := NewVcfWriter(brokenWriter{}, 2, true)
	assert.Error(t, vw.WriteHeader(VcfHeader{Samples: []string{"s1"}}))
}

func TestEmittersFanOut(t *testing.T) {
	a, b := &rowCollector{}, &rowCollector{}
	row := testRow(t)
	require.NoError(t, Emitters{a, b}.Emit(row))
	assert.Equal(t, []*Row{row}, a.rows)
	assert.Equal(t, []*Row{row}, b.rows)

	assert.ErrorIs(t, Emitters{&failingEmitter{}, a}.Emit(row), errEmit)
	assert.Len(t, a.rows, 1)
}

func TestCreateOutputBgzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.vcf.gz")
	output, err := createOutput(path)
	require.NoError(t, err)
	_, err = io.WriteString(output, "##fileformat=VCFv4.2\n")
	require.NoError(t, err)
	require.NoError(t, output.Close())

	input, err := openInput(path)
	require.NoError(t, err)
	defer input.Close()
	content, err := io.ReadAll(input)
	require.NoError(t, err)
	assert.Equal(t, "##fileformat=VCFv4.2\n", string(content))
}
