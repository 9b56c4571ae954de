package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/nvnieuwk/hapsim/hapsim_api"
	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:            "hapsim",
		Usage:           "Simulate genotypes that reproduce the allele frequencies and LD of a reference population",
		HideHelpCommand: true,
		Version:         "0.1.0dev",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "frequencies",
				Aliases:  []string{"f"},
				Usage:    "Plink2 .afreq file with alternate allele frequencies (may be bgzipped)",
				Category: "Required",
			},
			&cli.StringFlag{
				Name:     "ld",
				Aliases:  []string{"l"},
				Usage:    "Plink2 .vcor file with signed R values (may be bgzipped), not needed with --maf-only",
				Category: "Required",
			},
			&cli.IntFlag{
				Name:     "samples",
				Aliases:  []string{"n"},
				Usage:    "Number of samples to simulate",
				Category: "Required",
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Configuration file (YAML) with the run options and input column names, flags take precedence",
				Category: "Optional",
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "The location to the output VCF file, defaults to stdout. A .gz suffix writes bgzip",
				Category: "Optional",
			},
			&cli.StringFlag{
				Name:     "report",
				Usage:    "Write a TSV comparing input and simulated frequencies and correlations to this file",
				Category: "Optional",
			},
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Template for the output variant IDs using $CHROM, $POS, $REF, $ALT, $RANK and $ID. Defaults to the input ID",
				Category: "Optional",
			},
			&cli.BoolFlag{
				Name:     "nodate",
				Aliases:  []string{"nd"},
				Usage:    "Don't add the current date to the output VCF header",
				Category: "Optional",
			},
			&cli.BoolFlag{
				Name:     "verbose",
				Aliases:  []string{"v"},
				Usage:    "Log debug messages",
				Category: "Optional",
			},
			&cli.BoolFlag{
				Name:     "quiet",
				Aliases:  []string{"q"},
				Usage:    "Only log warnings and errors",
				Category: "Optional",
			},
			&cli.IntFlag{
				Name:     "ploidy",
				Aliases:  []string{"p"},
				Usage:    "Ploidy of the output genotypes (default: 2)",
				Category: "Model",
			},
			&cli.BoolFlag{
				Name:     "unphased",
				Usage:    "Write unphased genotype calls",
				Category: "Model",
			},
			&cli.BoolFlag{
				Name:     "maf-only",
				Usage:    "Skip the Markov chain and sample every variant from its frequency alone",
				Category: "Model",
			},
			&cli.Uint64Flag{
				Name:     "seed",
				Aliases:  []string{"s"},
				Usage:    "Seed of the run, a random seed is picked and logged when not given",
				Category: "Model",
			},
			&cli.IntFlag{
				Name:     "max-anchor-distance",
				Aliases:  []string{"w"},
				Usage:    "Only condition on variants at most this many variants upstream, 0 means any LD observation (default: 0)",
				Category: "Model",
			},
			&cli.StringFlag{
				Name:     "r2-sign",
				Usage:    "Sign assumed for correlations when the LD file only holds r2. Must be one of: positive, negative (default: positive)",
				Category: "Model",
			},
			&cli.IntFlag{
				Name:     "workers",
				Aliases:  []string{"t"},
				Usage:    "Number of goroutines drawing the alleles of a variant (default: number of CPUs)",
				Category: "Performance",
			},
			&cli.IntFlag{
				Name:     "buffer",
				Usage:    "Number of simulated variants buffered ahead of the writer (default: 16)",
				Category: "Performance",
			},
		},
		Before: func(Cctx *cli.Context) error {
			log.SetOutput(os.Stderr)
			switch {
			case Cctx.Bool("verbose"):
				log.SetLevel(log.DebugLevel)
			case Cctx.Bool("quiet"):
				log.SetLevel(log.WarnLevel)
			}
			return nil
		},
		Action: func(Cctx *cli.Context) error {
			config, err := hapsim_api.ReadConfig(Cctx)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err := hapsim_api.Execute(Cctx.Context, config); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
