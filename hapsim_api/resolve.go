package hapsim_api

import (
	"fmt"
	"strings"
)

// ResolveId fills an ID template with the fields of a variant.
// Supported fields: $CHROM, $POS, $REF, $ALT, $RANK and $ID (the input ID)
func ResolveId(template string, variant *Variant) string {
	id := template

	// Replace CHROM fields
	id = strings.ReplaceAll(id, "$CHROM", variant.Chromosome)

	// Replace POS fields
	id = strings.ReplaceAll(id, "$POS", fmt.Sprint(variant.Pos))

	// Replace REF fields
	id = strings.ReplaceAll(id, "$REF", variant.Ref)

	// Replace ALT fields
	id = strings.ReplaceAll(id, "$ALT", variant.Alt)

	// Replace RANK fields
	id = strings.ReplaceAll(id, "$RANK", fmt.Sprint(variant.Rank))

	// Replace ID fields
	id = strings.ReplaceAll(id, "$ID", variant.Id)

	return id
}
