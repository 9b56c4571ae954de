package hapsim_api

import (
	"fmt"
	"os"
	"runtime"

	"github.com/carbocation/pfx"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v2"
)

const (
	defaultPloidy = 2
	defaultBuffer = 16
	r2Positive    = "positive"
	r2Negative    = "negative"
)

// Read the configuration file if one was given, apply the command line
// flags on top of it, fill in the defaults and validate
func ReadConfig(Cctx *cli.Context) (*Config, error) {
	config := &Config{}
	if path := Cctx.String("config"); path != "" {
		var err error
		if config, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	config.applyFlags(Cctx)
	config.defineMissing()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig parses a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("failed to open the config file: %w", err))
	}

	var config Config
	if err := yaml.UnmarshalStrict(configFile, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse the config file %s: %v", ErrInvalidConfig, path, err)
	}
	return &config, nil
}

// Flags that were set explicitly override the config file
func (config *Config) applyFlags(Cctx *cli.Context) {
	if Cctx.IsSet("frequencies") {
		config.FrequencyFile = Cctx.String("frequencies")
	}
	if Cctx.IsSet("ld") {
		config.LdFile = Cctx.String("ld")
	}
	if Cctx.IsSet("output") {
		config.Output = Cctx.String("output")
	}
	if Cctx.IsSet("report") {
		config.Report = Cctx.String("report")
	}
	if Cctx.IsSet("samples") {
		config.Samples = Cctx.Int("samples")
	}
	if Cctx.IsSet("ploidy") {
		config.Ploidy = Cctx.Int("ploidy")
	}
	if Cctx.IsSet("unphased") {
		config.Unphased = Cctx.Bool("unphased")
	}
	if Cctx.IsSet("maf-only") {
		config.MafOnly = Cctx.Bool("maf-only")
	}
	if Cctx.IsSet("seed") {
		seed := Cctx.Uint64("seed")
		config.Seed = &seed
	}
	if Cctx.IsSet("max-anchor-distance") {
		config.MaxAnchorDistance = Cctx.Int("max-anchor-distance")
	}
	if Cctx.IsSet("r2-sign") {
		config.R2Sign = Cctx.String("r2-sign")
	}
	if Cctx.IsSet("workers") {
		config.Workers = Cctx.Int("workers")
	}
	if Cctx.IsSet("buffer") {
		config.Buffer = Cctx.Int("buffer")
	}
	if Cctx.IsSet("id") {
		config.Id = Cctx.String("id")
	}
	if Cctx.IsSet("nodate") {
		config.NoDate = Cctx.Bool("nodate")
	}
}

// Define all missing optional fields
func (config *Config) defineMissing() {
	if config.Ploidy == 0 {
		config.Ploidy = defaultPloidy
	}
	if config.R2Sign == "" {
		config.R2Sign = r2Positive
	}
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Buffer == 0 {
		config.Buffer = defaultBuffer
	}

	// Column names, plink2 --freq and --r-unphased output by default
	freq := &config.Columns.Frequency
	if freq.Id == "" {
		freq.Id = "ID"
	}
	if freq.Frequency == "" {
		freq.Frequency = "ALT_FREQS"
	}
	if freq.Alt == "" {
		freq.Alt = "ALT"
	}
	ld := &config.Columns.Ld
	if ld.IdA == "" {
		ld.IdA = "ID_A"
	}
	if ld.IdB == "" {
		ld.IdB = "ID_B"
	}
	if len(ld.R) == 0 {
		ld.R = []string{"UNPHASED_R", "PHASED_R", "R"}
	}
	if len(ld.R2) == 0 {
		ld.R2 = []string{"UNPHASED_R2", "PHASED_R2", "R2"}
	}
}

func (config *Config) validate() error {
	switch {
	case config.FrequencyFile == "":
		return fmt.Errorf("%w: a frequency file is required", ErrInvalidConfig)
	case config.LdFile == "" && !config.MafOnly:
		return fmt.Errorf("%w: an LD file is required unless maf-only is set", ErrInvalidConfig)
	case config.Samples < 1:
		return fmt.Errorf("%w: samples must be a positive integer, got %d", ErrInvalidConfig, config.Samples)
	case config.Ploidy < 1:
		return fmt.Errorf("%w: ploidy must be a positive integer, got %d", ErrInvalidConfig, config.Ploidy)
	case config.Workers < 1:
		return fmt.Errorf("%w: workers must be a positive integer, got %d", ErrInvalidConfig, config.Workers)
	case config.Buffer < 1:
		return fmt.Errorf("%w: buffer must be a positive integer, got %d", ErrInvalidConfig, config.Buffer)
	case config.MaxAnchorDistance < 0:
		return fmt.Errorf("%w: max-anchor-distance can't be negative", ErrInvalidConfig)
	}
	_, err := R2SignValue(config.R2Sign)
	return err
}

// R2SignValue converts the r2 sign option to the factor applied to sqrt(r2)
func R2SignValue(name string) (float64, error) {
	switch cases.Fold().String(name) {
	case r2Positive:
		return 1, nil
	case r2Negative:
		return -1, nil
	}
	return 0, fmt.Errorf("%w: r2 sign must be one of %s, %s, got %q", ErrInvalidConfig, r2Positive, r2Negative, name)
}

func r2SignName(sign float64) string {
	if sign < 0 {
		return r2Negative
	}
	return r2Positive
}
