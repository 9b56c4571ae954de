package hapsim_api

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/biogo/hts/bgzf"
	"github.com/carbocation/pfx"
)

// Emitter receives assembled rows one variant at a time
type Emitter interface {
	Emit(row *Row) error
}

// Emitters fans every row out to several emitters in order
type Emitters []Emitter

func (e Emitters) Emit(row *Row) error {
	for _, emitter := range e {
		if err := emitter.Emit(row); err != nil {
			return err
		}
	}
	return nil
}

// The header information of the output VCF
type VcfHeader struct {
	// The contigs in output order
	Contigs []string

	// The sample IDs in column order
	Samples []string

	// Add a fileDate line
	Date bool
}

// VcfWriter writes genotype rows as VCF lines
type VcfWriter struct {
	w       *bufio.Writer
	encoder *GenotypeEncoder

	// Template of the ID column, see ResolveId
	IdTemplate string
}

func NewVcfWriter(w io.Writer, ploidy int, phased bool) *VcfWriter {
	return &VcfWriter{
		w:       bufio.NewWriter(w),
		encoder: NewGenotypeEncoder(ploidy, phased),
	}
}

// WriteHeader writes the meta lines and the column header line
func (vw *VcfWriter) WriteHeader(header VcfHeader) error {
	vw.writeLine("##fileformat=VCFv4.2")

	// Date of file creation
	if header.Date {
		cT := time.Now()
		vw.writeLine(fmt.Sprintf("##fileDate=%d%02d%02d", cT.Year(), cT.Month(), cT.Day()))
	}

	vw.writeLine("##source=hapsim")
	vw.writeLine("##FILTER=<ID=PASS,Description=\"All filters passed\">")
	vw.writeLine("##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">")

	for _, contig := range header.Contigs {
		vw.writeLine(fmt.Sprintf("##contig=<ID=%s>", contig))
	}

	columnHeaders := []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}
	columnHeaders = append(columnHeaders, header.Samples...)
	vw.writeLine(strings.Join(columnHeaders, "\t"))
	return vw.w.Flush()
}

// Emit writes the row as one VCF line
func (vw *VcfWriter) Emit(row *Row) error {
	v := row.Variant
	id := v.Id
	if vw.IdTemplate != "" {
		id = ResolveId(vw.IdTemplate, v)
	} else if id == "" {
		id = v.VariantKey.String()
	}
	fmt.Fprintf(vw.w, "%s\t%d\t%s\t%s\t%s\t.\t.\t.\tGT", v.Chromosome, v.Pos, id, v.Ref, v.Alt)
	for _, call := range row.Calls {
		vw.w.WriteByte('\t')
		vw.w.WriteString(vw.encoder.Encode(call))
	}
	if err := vw.w.WriteByte('\n'); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// Flush writes any buffered lines to the underlying writer
func (vw *VcfWriter) Flush() error {
	if err := vw.w.Flush(); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func (vw *VcfWriter) writeLine(line string) {
	vw.w.WriteString(line)
	vw.w.WriteByte('\n')
}

// nopCloser keeps stdout open when the output is closed
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type bgzfFile struct {
	*bgzf.Writer
	file *os.File
}

func (b bgzfFile) Close() error {
	if err := b.Writer.Close(); err != nil {
		b.file.Close()
		return err
	}
	return b.file.Close()
}

// createOutput opens the output location, stdout when empty. Files ending in
// .gz are bgzip compressed.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("failed to create the output file: %w", err))
	}
	if strings.HasSuffix(path, ".gz") {
		return bgzfFile{Writer: bgzf.NewWriter(file, 1), file: file}, nil
	}
	return file, nil
}
