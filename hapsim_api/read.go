package hapsim_api

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/carbocation/pfx"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
)

// Counts of LD observations dropped while reading
type LdReadStats struct {
	// Rows read from the file
	Rows int

	// Rows naming a variant that is not in the frequency table
	Unknown int

	// Rows pairing variants on different contigs
	CrossContig int

	// Rows pairing a variant with itself
	SelfPairs int
}

// ReadFrequencyTable reads a plink2 .afreq style file into a frequency table
func ReadFrequencyTable(path string, columns FrequencyColumns) (*FrequencyTable, error) {
	variants := []Variant{}
	var idCol, freqCol, altCol int

	err := forEachLine(path, func(lineNo int, fields []string, header *columnIndex) error {
		if lineNo == 0 {
			var err error
			if idCol, err = header.require(columns.Id); err != nil {
				return err
			}
			if freqCol, err = header.require(columns.Frequency); err != nil {
				return err
			}
			altCol = header.find(columns.Alt)
			return nil
		}

		if len(fields) <= idCol || len(fields) <= freqCol || len(fields) <= altCol {
			return fmt.Errorf("%w: expected %d columns, found %d", ErrMalformedIdentity, header.len(), len(fields))
		}

		id := fields[idCol]
		key, err := ParseVariantId(id)
		if err != nil {
			return err
		}
		if strings.Contains(key.Alt, ",") {
			return fmt.Errorf("%w: %s", ErrMultiallelic, id)
		}
		if altCol >= 0 && strings.Contains(fields[altCol], ",") {
			return fmt.Errorf("%w: %s has ALT %s", ErrMultiallelic, id, fields[altCol])
		}
		if strings.Contains(fields[freqCol], ",") {
			return fmt.Errorf("%w: %s has frequencies %s", ErrMultiallelic, id, fields[freqCol])
		}
		freq, err := parseUnit(fields[freqCol])
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFrequencyRange, id, err)
		}

		variants = append(variants, Variant{
			VariantKey: key,
			Id:         id,
			Frequency:  freq,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	table, err := NewFrequencyTable(variants)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"file":     path,
		"variants": table.Len(),
		"contigs":  len(table.Contigs()),
	}).Info("Read allele frequencies")
	return table, nil
}

// ReadLDObservations reads a plink2 .vcor style file. Pairs naming variants
// missing from the table, pairs across contigs and self pairs are skipped and
// counted. Unsigned r2 values get the sign given by r2Sign.
func ReadLDObservations(path string, table *FrequencyTable, columns LdColumns, r2Sign float64) ([]LDObservation, LdReadStats, error) {
	observations := []LDObservation{}
	stats := LdReadStats{}
	var idACol, idBCol, rCol int
	squared := false

	err := forEachLine(path, func(lineNo int, fields []string, header *columnIndex) error {
		if lineNo == 0 {
			var err error
			if idACol, err = header.require(columns.IdA); err != nil {
				return err
			}
			if idBCol, err = header.require(columns.IdB); err != nil {
				return err
			}
			if rCol = header.findAny(columns.R); rCol < 0 {
				squared = true
				if rCol = header.findAny(columns.R2); rCol < 0 {
					return fmt.Errorf("%w: none of %s or %s",
						ErrMissingColumn, strings.Join(columns.R, ", "), strings.Join(columns.R2, ", "))
				}
				log.WithField("file", path).Warnf("Only r2 is available, correlations get a %s sign", r2SignName(r2Sign))
			}
			return nil
		}

		stats.Rows++
		if len(fields) <= idACol || len(fields) <= idBCol || len(fields) <= rCol {
			return fmt.Errorf("%w: expected %d columns, found %d", ErrMalformedIdentity, header.len(), len(fields))
		}

		r, err := strconv.ParseFloat(fields[rCol], 64)
		if err != nil || math.IsNaN(r) {
			return fmt.Errorf("%w: %q", ErrCorrelationRange, fields[rCol])
		}
		if squared {
			if r < 0 || r > 1 {
				return fmt.Errorf("%w: r2 %v", ErrCorrelationRange, r)
			}
			r = r2Sign * math.Sqrt(r)
		} else if r < -1 || r > 1 {
			return fmt.Errorf("%w: r %v", ErrCorrelationRange, r)
		}

		i, okA := table.RankById(fields[idACol])
		j, okB := table.RankById(fields[idBCol])
		switch {
		case !okA || !okB:
			stats.Unknown++
			log.Debugf("Skipping LD between unknown variants %s and %s", fields[idACol], fields[idBCol])
			return nil
		case i == j:
			stats.SelfPairs++
			return nil
		case table.Variant(i).Chromosome != table.Variant(j).Chromosome:
			stats.CrossContig++
			return nil
		}
		if i > j {
			i, j = j, i
		}
		observations = append(observations, LDObservation{I: i, J: j, R: r})
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	entry := log.WithFields(log.Fields{
		"file":         path,
		"rows":         stats.Rows,
		"observations": len(observations),
	})
	if skipped := stats.Unknown + stats.CrossContig + stats.SelfPairs; skipped > 0 {
		entry.WithFields(log.Fields{
			"unknown":      stats.Unknown,
			"cross_contig": stats.CrossContig,
			"self_pairs":   stats.SelfPairs,
		}).Warn("Skipped LD observations")
	}
	entry.Info("Read LD observations")
	return observations, stats, nil
}

// parseUnit parses a probability in [0,1]
func parseUnit(value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < 0 || f > 1 {
		return 0, fmt.Errorf("%v is outside [0,1]", f)
	}
	return f, nil
}

// columnIndex maps header names to their positions, ignoring case and a
// leading '#'
type columnIndex struct {
	names map[string]int
	n     int
	fold  cases.Caser
}

func newColumnIndex(fields []string) *columnIndex {
	index := &columnIndex{names: map[string]int{}, n: len(fields), fold: cases.Fold()}
	for i, name := range fields {
		key := index.normalize(name)
		if _, ok := index.names[key]; !ok {
			index.names[key] = i
		}
	}
	return index
}

func (c *columnIndex) normalize(name string) string {
	return c.fold.String(strings.TrimPrefix(strings.TrimSpace(name), "#"))
}

func (c *columnIndex) find(name string) int {
	if name == "" {
		return -1
	}
	if i, ok := c.names[c.normalize(name)]; ok {
		return i
	}
	return -1
}

func (c *columnIndex) findAny(names []string) int {
	for _, name := range names {
		if i := c.find(name); i >= 0 {
			return i
		}
	}
	return -1
}

func (c *columnIndex) require(name string) (int, error) {
	if i := c.find(name); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %s", ErrMissingColumn, name)
}

func (c *columnIndex) len() int {
	return c.n
}

// forEachLine calls fn for the header (line 0) and every following non-empty
// line, split on whitespace. Errors are prefixed with the file and line.
func forEachLine(path string, fn func(lineNo int, fields []string, header *columnIndex) error) error {
	input, err := openInput(path)
	if err != nil {
		return err
	}
	defer input.Close()

	scanner := bufio.NewScanner(input)
	const maxCapacity = 8 * 1000000 // 8 MB
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	var header *columnIndex
	lineNo, physical := 0, 0
	for scanner.Scan() {
		physical++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if header == nil {
			header = newColumnIndex(fields)
		}
		if err := fn(lineNo, fields, header); err != nil {
			return fmt.Errorf("%s:%d: %w", path, physical, err)
		}
		lineNo++
	}
	if err := scanner.Err(); err != nil {
		return pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	if header == nil {
		return fmt.Errorf("%s: %w: empty file", path, ErrMissingColumn)
	}
	return nil
}

type bgzfInput struct {
	*bgzf.Reader
	file *os.File
}

func (b bgzfInput) Close() error {
	b.Reader.Close()
	return b.file.Close()
}

// openInput opens a plain or bgzip compressed (.gz) file
func openInput(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return file, nil
	}
	bgReader, err := bgzf.NewReader(file, 1)
	if err != nil {
		file.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	return bgzfInput{Reader: bgReader, file: file}, nil
}
