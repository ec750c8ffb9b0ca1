// Command optimize builds lineups from a projections CSV and writes
// them back out as CSV, mirroring the HTTP API for batch use.
package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/export"
	"github.com/jstittsworth/nfl-lineup-optimizer/internal/optimizer"
	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
	"github.com/jstittsworth/nfl-lineup-optimizer/internal/report"
	"github.com/jstittsworth/nfl-lineup-optimizer/pkg/logger"
)

func main() {
	var (
		inPath     = flag.String("in", "projections.csv", "projections CSV path")
		outPath    = flag.String("out", "lineups.csv", "output CSV path")
		numLineups = flag.Int("n", 1, "number of lineups")
		salaryCap  = flag.Int("cap", 50000, "salary cap")
		minSalary  = flag.Int("min-salary", 49500, "minimum total salary")
		maxPerTeam = flag.Int("max-per-team", 4, "max players per team")
		stackMin   = flag.Int("stack", 1, "minimum same-team WR/TE with the QB")
		bringBack  = flag.Bool("bring-back", false, "require an opposing WR/TE with the QB")
		noRBvsDST  = flag.Bool("no-rb-vs-dst", false, "forbid RBs facing the selected DST")
		uniqueness = flag.Int("uniqueness", 2, "min differing players between lineups")
		exposure   = flag.Float64("exposure", 0.35, "max player exposure fraction")
		randomness = flag.Float64("randomness", 0.04, "projection noise amplitude")
		seed       = flag.Uint64("seed", 0, "noise seed, 0 for clock")
		exclude    = flag.String("exclude", "", "comma-separated player names to drop")
		timeout    = flag.Duration("timeout", 10*time.Second, "per-solve timeout")
		logLevel   = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger.InitLogger(*logLevel, true)
	log := logger.WithService("optimize-cli")

	var excludeNames []string
	if *exclude != "" {
		excludeNames = strings.Split(*exclude, ",")
	}

	candidates, err := pool.LoadProjectionsFile(*inPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to read projections")
	}

	p, loadReport, err := pool.NewPool(candidates, excludeNames)
	if err != nil {
		log.WithError(err).Fatal("Projections failed validation")
	}
	if loadReport.Filtered > 0 {
		for _, issue := range loadReport.Issues {
			log.WithFields(logrus.Fields{
				"row":    issue.Row,
				"player": issue.Name,
			}).Warn(issue.Reason)
		}
	}

	cfg := optimizer.DefaultConfig()
	cfg.SalaryCap = *salaryCap
	cfg.MinSalary = *minSalary
	cfg.MaxPerTeam = *maxPerTeam
	cfg.QBStackMin = *stackMin
	cfg.BringBack = *bringBack
	cfg.NoRBVsOppDST = *noRBvsDST
	cfg.NumLineups = *numLineups
	cfg.UniquenessThreshold = *uniqueness
	cfg.MaxExposureFraction = *exposure
	cfg.RandomnessAmplitude = *randomness
	cfg.Seed = *seed
	cfg.SolveTimeout = *timeout

	gen, err := optimizer.NewGenerator(p, cfg)
	if err != nil {
		log.WithError(err).Fatal("Invalid settings")
	}

	portfolio, err := gen.Generate(context.Background())
	if err != nil {
		log.WithError(err).Fatal("Optimization failed")
	}

	if err := export.WritePortfolioFile(*outPath, portfolio); err != nil {
		log.WithError(err).Fatal("Failed to write output")
	}

	rep := report.Build(p, portfolio, cfg)
	log.WithFields(logrus.Fields{
		"run_id":      portfolio.RunID,
		"accepted":    portfolio.Summary.Accepted,
		"skipped":     portfolio.Summary.Skipped,
		"min_unique":  rep.MinUniquePlayers,
		"violations":  len(rep.Violations),
		"output_path": *outPath,
	}).Info("Lineups written")
	for _, v := range rep.Violations {
		log.Warn(v)
	}
}
