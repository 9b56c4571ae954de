package hapsim_api

// The identity of a biallelic variant, shared by the frequency and LD inputs
type VariantKey struct {
	// The chromosome of the variant
	Chromosome string

	// The 1-based position of the variant
	Pos int64

	// The reference allele of the variant
	Ref string

	// The alternate allele of the variant
	Alt string
}

// A struct representing a variant from the frequency table
type Variant struct {
	VariantKey

	// The ID of the variant as written in the input file
	Id string

	// The 0-based rank of the variant in genomic order
	Rank int

	// The alternate allele frequency of the variant, in [0,1]
	Frequency float64
}

// A pairwise correlation between two variant ranks
type LDObservation struct {
	// The rank of the first variant
	I int

	// The rank of the second variant
	J int

	// The signed correlation coefficient between both variants
	R float64
}

// One sampled variant: a single allele per (sample, haplotype copy)
type Column struct {
	// The rank of the variant this column was drawn for
	Rank int

	// The sampled alleles, laid out sample-major: sample*ploidy + copy
	Alleles []uint8

	// The number of alternate alleles in Alleles
	AltCount int

	// The number of alternate alleles in the anchor column, 0 when unanchored
	AnchorAltCount int

	// The number of haplotypes carrying the alternate allele at both the
	// anchor and this variant, 0 when unanchored
	JointAltCount int
}

// The genotype call of one sample at one variant
type GenotypeCall struct {
	// The alleles of the call, one per haplotype copy
	// In phased mode the order matches the copy index, in unphased mode
	// the alleles are sorted ascending
	Alleles []uint8

	// Whether the call order is meaningful
	Phased bool
}

// A fully assembled variant ready to be emitted
type Row struct {
	// The variant identity
	Variant *Variant

	// The anchor variant, nil when the variant was sampled from its marginal
	Anchor *Variant

	// The conditional used for the variant, nil when unanchored
	Conditional *Conditional

	// The input correlation with the anchor, 0 when unanchored
	R float64

	// One call per sample, in sample order
	Calls []GenotypeCall

	// The counting statistics of the underlying column
	AltCount       int
	AnchorAltCount int
	JointAltCount  int
}

//
// Config structs
//

// The struct representing the run configuration
// The config file is a YAML file, command line flags take precedence
type Config struct {
	// The plink2 .afreq file with alternate allele frequencies
	FrequencyFile string `yaml:"frequencies"`

	// The plink2 .vcor file with pairwise correlations
	LdFile string `yaml:"ld"`

	// The location of the output VCF, stdout when empty
	Output string `yaml:"output"`

	// The location of the optional diagnostics report
	Report string `yaml:"report"`

	// The number of samples to simulate
	Samples int `yaml:"samples"`

	// The ploidy of every simulated sample
	Ploidy int `yaml:"ploidy"`

	// Write unphased genotype calls
	Unphased bool `yaml:"unphased"`

	// Skip the Markov chain and sample each variant from its frequency alone
	MafOnly bool `yaml:"maf_only"`

	// The seed of the run, a random seed is picked when nil
	Seed *uint64 `yaml:"seed"`

	// The maximum rank distance between a variant and its anchor, 0 means unlimited
	MaxAnchorDistance int `yaml:"max_anchor_distance"`

	// The sign given to correlations recovered from unsigned r2 values
	// Can be "positive" or "negative"
	R2Sign string `yaml:"r2_sign"`

	// The number of goroutines drawing alleles for one variant
	Workers int `yaml:"workers"`

	// The number of assembled variants buffered before the writer
	Buffer int `yaml:"buffer"`

	// Don't add the current date to the output VCF header
	NoDate bool `yaml:"nodate"`

	// A template for the output variant IDs, e.g. "$CHROM:$POS"
	// The input ID is kept when empty
	Id string `yaml:"id"`

	// The column names used in the input files
	Columns ColumnConfig `yaml:"columns"`
}

// Column names of the frequency and LD files
type ColumnConfig struct {
	Frequency FrequencyColumns `yaml:"frequencies"`
	Ld        LdColumns        `yaml:"ld"`
}

// Column names of the frequency file
type FrequencyColumns struct {
	// The column holding the chrom_pos_ref_alt variant ID
	Id string `yaml:"id"`

	// The column holding the alternate allele frequency
	Frequency string `yaml:"frequency"`

	// The column holding the alternate allele, optional
	Alt string `yaml:"alt"`
}

// Column names of the LD file
type LdColumns struct {
	// The column holding the ID of the first variant
	IdA string `yaml:"id_a"`

	// The column holding the ID of the second variant
	IdB string `yaml:"id_b"`

	// Candidate columns holding a signed correlation, first match wins
	R []string `yaml:"r"`

	// Candidate columns holding an unsigned r2, used when no R column exists
	R2 []string `yaml:"r2"`
}
