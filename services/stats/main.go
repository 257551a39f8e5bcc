package stats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/dtos"
	"proteinpaint/api/repositories/tabix"

	"github.com/ahmetb/go-linq"
	"github.com/google/uuid"
)

// ComputeBoxplot returns the five-number summary of a value list by
// the nearest-rank method. Fewer than 5 values cannot support a box;
// they are all reported as outliers, matching what the client expects.
func ComputeBoxplot(values []float64) *dtos.Boxplot {
	boxplot := &dtos.Boxplot{
		Out:         []float64{},
		SampleCount: len(values),
	}

	if len(values) < 5 {
		boxplot.Out = append(boxplot.Out, values...)
		sort.Float64s(boxplot.Out)
		return boxplot
	}

	var sorted []float64
	linq.From(values).
		OrderBy(func(v interface{}) interface{} { return v.(float64) }).
		ToSlice(&sorted)

	l := len(sorted)
	boxplot.P25 = sorted[l/4]
	boxplot.P50 = sorted[l/2]
	boxplot.P75 = sorted[l*3/4]

	iqr := (boxplot.P75 - boxplot.P25) * 1.5
	lowerBound := boxplot.P25 - iqr
	upperBound := boxplot.P75 + iqr

	// whiskers: first/last values still inside the fences
	boxplot.W1 = boxplot.P25
	for _, v := range sorted {
		if v >= lowerBound {
			boxplot.W1 = v
			break
		}
	}
	boxplot.W2 = boxplot.P75
	for i := l - 1; i >= 0; i-- {
		if sorted[i] <= upperBound {
			boxplot.W2 = sorted[i]
			break
		}
	}

	for _, v := range sorted {
		if v < lowerBound || v > upperBound {
			boxplot.Out = append(boxplot.Out, v)
		}
	}

	return boxplot
}

// SurvivalEntry is one sample's follow-up observation.
type SurvivalEntry struct {
	Time     float64
	Censored int
}

// SampleSet is one comparison arm of a survival analysis.
type SampleSet struct {
	Label   string
	Entries []SurvivalEntry
}

// KaplanMeier computes the step curve of one sample set: at each
// event time the survival fraction drops by its share of the
// remaining at-risk samples; censored observations only shrink the
// risk set.
func KaplanMeier(entries []SurvivalEntry) []dtos.SurvivalStep {
	sorted := append([]SurvivalEntry{}, entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	steps := []dtos.SurvivalStep{{X: 0, Y: 1}}
	y := 1.0
	atRisk := len(sorted)

	for i := 0; i < len(sorted); {
		t := sorted[i].Time
		events, censored := 0, 0
		for i < len(sorted) && sorted[i].Time == t {
			if sorted[i].Censored == 1 {
				censored++
			} else {
				events++
			}
			i++
		}

		drop := 0.0
		if events > 0 && atRisk > 0 {
			drop = y * float64(events) / float64(atRisk)
			y -= drop
		}
		steps = append(steps, dtos.SurvivalStep{X: t, Y: y, Drop: drop, Censored: censored})
		atRisk -= events + censored
	}

	return steps
}

// Service runs the external statistical scripts.
type Service struct {
	Executor *tabix.Executor
	Config   *models.Config
}

func NewStatsService(executor *tabix.Executor, cfg *models.Config) *Service {
	return &Service{
		Executor: executor,
		Config:   cfg,
	}
}

// SurvivalPValue runs the log-rank test over two or more sample sets
// through the external R script. The observation table is written to
// a randomly named temp file and the p-value read back from the
// script's output file; both are deleted on every exit path.
func (s *Service) SurvivalPValue(ctx context.Context, sets []SampleSet) (float64, error) {
	if len(sets) < 2 {
		return 0, apperror.New(apperror.StatsError, "log-rank test needs at least two sample sets")
	}

	if _, statErr := os.Stat(s.Config.Scripts.Survival); statErr != nil {
		return 0, apperror.Newf(apperror.StatsError, "%s does not exist", s.Config.Scripts.Survival)
	}

	var table strings.Builder
	table.WriteString("futime\tfustat\trx\n")
	for groupIdx, set := range sets {
		for _, entry := range set.Entries {
			status := 1
			if entry.Censored == 1 {
				status = 0
			}
			fmt.Fprintf(&table, "%v\t%d\t%d\n", entry.Time, status, groupIdx)
		}
	}

	// the cache directory may not exist yet on a fresh deployment
	if mkdirErr := os.MkdirAll(s.Config.Cache.Dir, 0755); mkdirErr != nil {
		return 0, apperror.Wrap(apperror.StatsError, fmt.Sprintf("cannot create temp directory %s", s.Config.Cache.Dir), mkdirErr)
	}

	tmpBase := filepath.Join(s.Config.Cache.Dir, uuid.New().String())
	infile := tmpBase + ".survival.tsv"
	outfile := tmpBase + ".survival.out"

	// temp files go regardless of how the script run ends
	defer os.Remove(infile)
	defer os.Remove(outfile)

	if writeErr := os.WriteFile(infile, []byte(table.String()), 0644); writeErr != nil {
		return 0, apperror.Wrap(apperror.StatsError, "cannot write survival input file", writeErr)
	}

	if _, runErr := s.Executor.Run(ctx, s.Config.Tools.Rscript,
		[]string{s.Config.Scripts.Survival, infile, outfile}, "", nil); runErr != nil {
		return 0, apperror.Wrap(apperror.StatsError, "log-rank script failed", runErr)
	}

	raw, readErr := os.ReadFile(outfile)
	if readErr != nil {
		return 0, apperror.Wrap(apperror.StatsError, "log-rank script produced no output file", readErr)
	}

	pvalue, parseErr := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if parseErr != nil {
		return 0, apperror.Newf(apperror.StatsError, "log-rank script output is not a p-value: %q", strings.TrimSpace(string(raw)))
	}

	return pvalue, nil
}

// BinomialPValues streams `label \t successes \t total` rows into the
// external binomial-test R script and returns one p-value per row, in
// input order.
func (s *Service) BinomialPValues(ctx context.Context, rows []string) ([]float64, error) {
	if _, statErr := os.Stat(s.Config.Scripts.Binomial); statErr != nil {
		return nil, apperror.Newf(apperror.StatsError, "%s does not exist", s.Config.Scripts.Binomial)
	}

	stdin := []byte(strings.Join(rows, "\n") + "\n")
	outLines, runErr := s.Executor.Run(ctx, s.Config.Tools.Rscript,
		[]string{s.Config.Scripts.Binomial}, "", stdin)
	if runErr != nil {
		return nil, apperror.Wrap(apperror.StatsError, "binomial script failed", runErr)
	}

	if len(outLines) != len(rows) {
		return nil, apperror.Newf(apperror.StatsError, "binomial script returned %d values for %d rows", len(outLines), len(rows))
	}

	pvalues := make([]float64, len(outLines))
	for i, line := range outLines {
		pvalue, parseErr := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if parseErr != nil {
			return nil, apperror.Newf(apperror.StatsError, "binomial script output line %d is not a p-value: %q", i+1, line)
		}
		pvalues[i] = pvalue
	}

	return pvalues, nil
}
