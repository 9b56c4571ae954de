package hapsim_api

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/carbocation/pfx"
)

// ReportWriter writes per-variant diagnostics comparing the input
// statistics with the simulated ones
type ReportWriter struct {
	w          *bufio.Writer
	haplotypes int
}

func NewReportWriter(w io.Writer, haplotypes int) *ReportWriter {
	return &ReportWriter{
		w:          bufio.NewWriter(w),
		haplotypes: haplotypes,
	}
}

func (rw *ReportWriter) WriteHeader() error {
	fmt.Fprintln(rw.w, "ID\tRANK\tFREQ\tSIM_FREQ\tANCHOR_ID\tR\tEFFECTIVE_R\tSIM_R\tCLIPPED")
	return rw.Flush()
}

func (rw *ReportWriter) Emit(row *Row) error {
	v := row.Variant
	n := float64(rw.haplotypes)
	simFreq := float64(row.AltCount) / n

	anchorId, r, effectiveR, simR, clipped := ".", ".", ".", ".", "."
	if row.Anchor != nil {
		anchorId = row.Anchor.Id
		r = formatFloat(row.R)
		effectiveR = formatFloat(row.Conditional.EffectiveR)
		simR = formatFloat(SimulatedCorrelation(row.AnchorAltCount, row.AltCount, row.JointAltCount, rw.haplotypes))
		clipped = strconv.FormatBool(row.Conditional.Clipped)
	}

	_, err := fmt.Fprintf(rw.w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		v.Id, v.Rank, formatFloat(v.Frequency), formatFloat(simFreq), anchorId, r, effectiveR, simR, clipped)
	if err != nil {
		return pfx.Err(err)
	}
	return nil
}

func (rw *ReportWriter) Flush() error {
	if err := rw.w.Flush(); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// SimulatedCorrelation returns the correlation between two binary variables
// from their alternate counts and joint alternate count over n draws. It is
// NaN when either variable did not vary.
func SimulatedCorrelation(anchorAlt, targetAlt, jointAlt, n int) float64 {
	total := float64(n)
	pa := float64(anchorAlt) / total
	pb := float64(targetAlt) / total
	pab := float64(jointAlt) / total
	variance := pa * (1 - pa) * pb * (1 - pb)
	if variance <= 0 {
		return math.NaN()
	}
	return (pab - pa*pb) / math.Sqrt(variance)
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NA"
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}
