package hapsim_api

import (
	"context"
	"errors"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"
)

// Execute loads the inputs named in the config, builds the model and streams
// the simulated genotypes to the configured output
func Execute(ctx context.Context, config *Config) error {
	model, err := BuildModel(config)
	if err != nil {
		return err
	}

	seed := rand.Uint64()
	if config.Seed != nil {
		seed = *config.Seed
	} else {
		log.WithField("seed", seed).Info("No seed given, pass this one to reproduce the run")
	}

	sim := &Simulation{
		Model:   model,
		Samples: config.Samples,
		Ploidy:  config.Ploidy,
		Phased:  !config.Unphased,
		Seed:    seed,
		Workers: config.Workers,
		Buffer:  config.Buffer,
	}

	sampleIds, err := GenerateSampleIds(config.Samples, seed)
	if err != nil {
		return err
	}

	output, err := createOutput(config.Output)
	if err != nil {
		return err
	}
	vcf := NewVcfWriter(output, sim.Ploidy, sim.Phased)
	vcf.IdTemplate = config.Id
	if err := vcf.WriteHeader(VcfHeader{
		Contigs: model.Table.Contigs(),
		Samples: sampleIds,
		Date:    !config.NoDate,
	}); err != nil {
		output.Close()
		return err
	}
	emitters := Emitters{vcf}
	closers := []func() error{vcf.Flush, output.Close}

	if config.Report != "" {
		reportOutput, err := createOutput(config.Report)
		if err != nil {
			output.Close()
			return err
		}
		report := NewReportWriter(reportOutput, sim.Samples*sim.Ploidy)
		if err := report.WriteHeader(); err != nil {
			output.Close()
			reportOutput.Close()
			return err
		}
		emitters = append(emitters, report)
		closers = append(closers, report.Flush, reportOutput.Close)
	}

	log.WithFields(log.Fields{
		"samples": sim.Samples,
		"ploidy":  sim.Ploidy,
		"phased":  sim.Phased,
		"workers": sim.Workers,
	}).Info("Simulating genotypes")

	// Flush what was emitted even when the run fails, every emitted line is complete
	runErr := sim.Run(ctx, emitters)
	errs := []error{runErr}
	for _, closeFn := range closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// BuildModel reads the frequency and LD files and derives the anchor forest
// and the conditionals
func BuildModel(config *Config) (*Model, error) {
	table, err := ReadFrequencyTable(config.FrequencyFile, config.Columns.Frequency)
	if err != nil {
		return nil, err
	}

	observations := []LDObservation{}
	if config.MafOnly {
		log.Warn("Skipping the Markov chain, the simulation will not have realistic LD patterns")
	} else {
		sign, err := R2SignValue(config.R2Sign)
		if err != nil {
			return nil, err
		}
		observations, _, err = ReadLDObservations(config.LdFile, table, config.Columns.Ld, sign)
		if err != nil {
			return nil, err
		}
	}

	forest, err := BuildAnchorForest(table.Len(), observations, config.MaxAnchorDistance)
	if err != nil {
		return nil, err
	}
	model := NewModel(table, forest)

	log.WithFields(log.Fields{
		"variants": model.Len(),
		"anchored": forest.Anchored(),
		"clipped":  model.Clipped(),
		"max_span": forest.MaxSpan(),
	}).Info("Built the LD model")
	if model.Clipped() > 0 {
		log.Debugf("%d joint probabilities were clipped to the feasible region, their correlation is attenuated", model.Clipped())
	}
	return model, nil
}
