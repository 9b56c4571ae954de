package hapsim_api

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Simulation is the context of a single run. Every component reads its
// settings from here, nothing is kept in package state.
type Simulation struct {
	// The model to sample from
	Model *Model

	// The number of samples
	Samples int

	// The number of haplotype copies per sample
	Ploidy int

	// Keep the copy order in the genotype calls
	Phased bool

	// The seed of every random stream in the run
	Seed uint64

	// The number of goroutines drawing one variant
	Workers int

	// The number of assembled rows buffered ahead of the emitter
	Buffer int
}

func (sim *Simulation) validate() error {
	switch {
	case sim.Model == nil:
		return fmt.Errorf("%w: no model", ErrInvalidConfig)
	case sim.Samples < 1:
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfig, sim.Samples)
	case sim.Ploidy < 1:
		return fmt.Errorf("%w: ploidy must be positive, got %d", ErrInvalidConfig, sim.Ploidy)
	case sim.Buffer < 1:
		return fmt.Errorf("%w: buffer must be positive, got %d", ErrInvalidConfig, sim.Buffer)
	}
	return nil
}

// Run samples every variant in rank order and hands the assembled rows to
// the emitter. At most Buffer rows wait for the emitter; the sampler blocks
// once the buffer is full. Rows already emitted when ctx is cancelled or the
// emitter fails are left as they are.
func (sim *Simulation) Run(ctx context.Context, emitter Emitter) error {
	if err := sim.validate(); err != nil {
		return err
	}

	sampler := NewSampler(sim)
	assembler := NewAssembler(sim.Model, sim.Samples, sim.Ploidy, sim.Phased)
	rows := make(chan *Row, sim.Buffer)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(rows)
		for {
			column, ok := sampler.Next()
			if !ok {
				break
			}
			select {
			case rows <- assembler.Assemble(column):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		log.WithFields(log.Fields{
			"variants":    sim.Model.Len(),
			"peak_window": sampler.PeakResident(),
			"max_span":    sim.Model.Anchors.MaxSpan(),
		}).Info("Sampling finished")
		return nil
	})
	g.Go(func() error {
		for row := range rows {
			if err := emitter.Emit(row); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
