package hapsim_api

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// FrequencyTable holds the variants of a run in rank order. It is immutable
// once built.
type FrequencyTable struct {
	variants []Variant
	byKey    map[VariantKey]int
	byId     map[string]int
	contigs  []string
}

// NewFrequencyTable validates the variants and ranks them by contig (in order
// of first appearance), then position. Ties keep their input order.
func NewFrequencyTable(variants []Variant) (*FrequencyTable, error) {
	table := &FrequencyTable{
		variants: make([]Variant, len(variants)),
		byKey:    make(map[VariantKey]int, len(variants)),
		byId:     make(map[string]int, len(variants)),
	}
	copy(table.variants, variants)

	contigOrder := map[string]int{}
	for i := range table.variants {
		v := &table.variants[i]
		if err := v.validate(); err != nil {
			return nil, err
		}
		if _, ok := contigOrder[v.Chromosome]; !ok {
			contigOrder[v.Chromosome] = len(table.contigs)
			table.contigs = append(table.contigs, v.Chromosome)
		}
	}

	sort.SliceStable(table.variants, func(a, b int) bool {
		va, vb := &table.variants[a], &table.variants[b]
		if va.Chromosome != vb.Chromosome {
			return contigOrder[va.Chromosome] < contigOrder[vb.Chromosome]
		}
		return va.Pos < vb.Pos
	})

	for rank := range table.variants {
		v := &table.variants[rank]
		v.Rank = rank
		if _, ok := table.byKey[v.VariantKey]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVariant, v.VariantKey)
		}
		table.byKey[v.VariantKey] = rank
		if v.Id != "" {
			table.byId[v.Id] = rank
		}
	}

	return table, nil
}

func (v *Variant) validate() error {
	if v.Chromosome == "" || v.Pos < 1 || v.Ref == "" || v.Alt == "" {
		return fmt.Errorf("%w: %q", ErrMalformedIdentity, v.Id)
	}
	if strings.Contains(v.Alt, ",") || strings.Contains(v.Ref, ",") {
		return fmt.Errorf("%w: %q", ErrMultiallelic, v.Id)
	}
	if math.IsNaN(v.Frequency) || v.Frequency < 0 || v.Frequency > 1 {
		return fmt.Errorf("%w: %q has frequency %v", ErrFrequencyRange, v.Id, v.Frequency)
	}
	return nil
}

// Len returns the number of variants
func (t *FrequencyTable) Len() int {
	return len(t.variants)
}

// Variant returns the variant with the given rank
func (t *FrequencyTable) Variant(rank int) *Variant {
	return &t.variants[rank]
}

// Rank returns the rank of the variant with the given identity
func (t *FrequencyTable) Rank(key VariantKey) (int, bool) {
	rank, ok := t.byKey[key]
	return rank, ok
}

// RankById returns the rank of a variant by its input ID. IDs that parse as
// chrom_pos_ref_alt are matched on identity, anything else on the raw string.
func (t *FrequencyTable) RankById(id string) (int, bool) {
	if key, err := ParseVariantId(id); err == nil {
		if rank, ok := t.byKey[key]; ok {
			return rank, true
		}
	}
	rank, ok := t.byId[id]
	return rank, ok
}

// Contigs returns the contigs in order of first appearance
func (t *FrequencyTable) Contigs() []string {
	return t.contigs
}

// Monomorphic reports whether the variant has no variation
func (v *Variant) Monomorphic() bool {
	return v.Frequency == 0 || v.Frequency == 1
}

// ParseVariantId splits a chrom_pos_ref_alt (or chrom:pos:ref:alt) ID into
// its identity. The chromosome may contain the separator itself. The position
// must be written in canonical decimal form.
func ParseVariantId(id string) (VariantKey, error) {
	for _, sep := range []string{"_", ":"} {
		fields := strings.Split(id, sep)
		if len(fields) < 4 {
			continue
		}
		n := len(fields)
		pos, err := strconv.ParseInt(fields[n-3], 10, 64)
		if err != nil || strconv.FormatInt(pos, 10) != fields[n-3] {
			continue
		}
		key := VariantKey{
			Chromosome: strings.Join(fields[:n-3], sep),
			Pos:        pos,
			Ref:        fields[n-2],
			Alt:        fields[n-1],
		}
		if key.Chromosome == "" || key.Pos < 1 || key.Ref == "" || key.Alt == "" {
			continue
		}
		return key, nil
	}
	return VariantKey{}, fmt.Errorf("%w: %q is not chrom_pos_ref_alt", ErrMalformedIdentity, id)
}

func (k VariantKey) String() string {
	return fmt.Sprintf("%s_%d_%s_%s", k.Chromosome, k.Pos, k.Ref, k.Alt)
}
