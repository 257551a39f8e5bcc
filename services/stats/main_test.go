package stats

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"proteinpaint/api/models"
	"proteinpaint/api/repositories/tabix"

	"github.com/stretchr/testify/assert"
)

func TestBoxplotWithOutlier(t *testing.T) {
	boxplot := ComputeBoxplot([]float64{1, 2, 3, 4, 5, 100})

	assert.Equal(t, 2.0, boxplot.P25)
	assert.Equal(t, 4.0, boxplot.P50)
	assert.Equal(t, 5.0, boxplot.P75)
	assert.Equal(t, 1.0, boxplot.W1)
	assert.Equal(t, 5.0, boxplot.W2)
	assert.Equal(t, []float64{100}, boxplot.Out)
	assert.Equal(t, 6, boxplot.SampleCount)
}

func TestBoxplotInvariants(t *testing.T) {
	boxplot := ComputeBoxplot([]float64{7, 3, 9, 1, 5, 8, 2, 6, 4, 10})

	assert.LessOrEqual(t, boxplot.W1, boxplot.P25)
	assert.LessOrEqual(t, boxplot.P25, boxplot.P50)
	assert.LessOrEqual(t, boxplot.P50, boxplot.P75)
	assert.LessOrEqual(t, boxplot.P75, boxplot.W2)
}

func TestBoxplotOfTinyListIsAllOutliers(t *testing.T) {
	boxplot := ComputeBoxplot([]float64{3, 1, 2})

	assert.Equal(t, []float64{1, 2, 3}, boxplot.Out)
	assert.Equal(t, 3, boxplot.SampleCount)
}

func TestKaplanMeierStartsAtOne(t *testing.T) {
	steps := KaplanMeier([]SurvivalEntry{{Time: 5, Censored: 0}})

	assert.Equal(t, 0.0, steps[0].X)
	assert.Equal(t, 1.0, steps[0].Y)
}

func TestKaplanMeierDropsAtEventTimes(t *testing.T) {
	steps := KaplanMeier([]SurvivalEntry{
		{Time: 1, Censored: 0},
		{Time: 2, Censored: 1},
		{Time: 3, Censored: 0},
		{Time: 4, Censored: 0},
	})

	// t=1: 1 event of 4 at risk -> 0.75
	assert.Equal(t, 1.0, steps[1].X)
	assert.InDelta(t, 0.75, steps[1].Y, 1e-9)

	// t=2: censored only, no drop
	assert.Equal(t, 2.0, steps[2].X)
	assert.InDelta(t, 0.75, steps[2].Y, 1e-9)
	assert.Equal(t, 1, steps[2].Censored)

	// t=3: 1 event of 2 at risk -> 0.375
	assert.InDelta(t, 0.375, steps[3].Y, 1e-9)

	// t=4: last event -> 0
	assert.InDelta(t, 0.0, steps[4].Y, 1e-9)
}

func TestKaplanMeierGroupsTiedEventTimes(t *testing.T) {
	steps := KaplanMeier([]SurvivalEntry{
		{Time: 2, Censored: 0},
		{Time: 2, Censored: 0},
		{Time: 5, Censored: 0},
	})

	// both t=2 events collapse into one step
	assert.Len(t, steps, 3)
	assert.InDelta(t, 1.0/3.0, steps[1].Y, 1e-9)
}

// newScriptedStatsService stands a shell script in for Rscript so the
// subprocess plumbing can be exercised without R installed.
func newScriptedStatsService(t *testing.T, survivalScript string, binomialScript string) *Service {
	dir := t.TempDir()

	cfg := &models.Config{}
	cfg.Cache.Dir = t.TempDir()
	cfg.Tools.Rscript = "sh"

	if survivalScript != "" {
		cfg.Scripts.Survival = filepath.Join(dir, "survival.sh")
		assert.Nil(t, os.WriteFile(cfg.Scripts.Survival, []byte(survivalScript), 0755))
	}
	if binomialScript != "" {
		cfg.Scripts.Binomial = filepath.Join(dir, "binomial.sh")
		assert.Nil(t, os.WriteFile(cfg.Scripts.Binomial, []byte(binomialScript), 0755))
	}

	return NewStatsService(&tabix.Executor{MaxConcurrent: 1}, cfg)
}

func cacheDirEntries(t *testing.T, dir string) int {
	entries, err := os.ReadDir(dir)
	assert.Nil(t, err)
	return len(entries)
}

func TestSurvivalPValueParsesScriptOutput(t *testing.T) {
	s := newScriptedStatsService(t, "echo 0.042 > \"$2\"\n", "")

	sets := []SampleSet{
		{Label: "low", Entries: []SurvivalEntry{{Time: 1}, {Time: 2}}},
		{Label: "high", Entries: []SurvivalEntry{{Time: 3}, {Time: 4, Censored: 1}}},
	}

	pvalue, err := s.SurvivalPValue(context.Background(), sets)

	assert.Nil(t, err)
	assert.Equal(t, 0.042, pvalue)
	// temp files are cleaned up on success
	assert.Equal(t, 0, cacheDirEntries(t, s.Config.Cache.Dir))
}

func TestSurvivalPValueOnFreshCacheDirectory(t *testing.T) {
	s := newScriptedStatsService(t, "echo 0.042 > \"$2\"\n", "")
	// nothing has created the cache directory yet
	s.Config.Cache.Dir = filepath.Join(t.TempDir(), "not-yet", "pp-cache")

	sets := []SampleSet{
		{Label: "low", Entries: []SurvivalEntry{{Time: 1}, {Time: 2}}},
		{Label: "high", Entries: []SurvivalEntry{{Time: 3}, {Time: 4, Censored: 1}}},
	}

	pvalue, err := s.SurvivalPValue(context.Background(), sets)

	assert.Nil(t, err)
	assert.Equal(t, 0.042, pvalue)
	assert.Equal(t, 0, cacheDirEntries(t, s.Config.Cache.Dir))
}

func TestSurvivalPValueCleansUpOnScriptFailure(t *testing.T) {
	s := newScriptedStatsService(t, "exit 1\n", "")

	sets := []SampleSet{
		{Label: "low", Entries: []SurvivalEntry{{Time: 1}}},
		{Label: "high", Entries: []SurvivalEntry{{Time: 2}}},
	}

	_, err := s.SurvivalPValue(context.Background(), sets)

	assert.NotNil(t, err)
	// temp files are cleaned up on failure too
	assert.Equal(t, 0, cacheDirEntries(t, s.Config.Cache.Dir))
}

func TestSurvivalPValueNeedsTwoSets(t *testing.T) {
	s := newScriptedStatsService(t, "echo 0.5 > \"$2\"\n", "")

	_, err := s.SurvivalPValue(context.Background(), []SampleSet{
		{Label: "only", Entries: []SurvivalEntry{{Time: 1}}},
	})

	assert.NotNil(t, err)
}

func TestBinomialPValuesOnePerRowInOrder(t *testing.T) {
	s := newScriptedStatsService(t, "", "while read line; do echo 0.25; done\n")

	pvalues, err := s.BinomialPValues(context.Background(), []string{
		"chr1.100\t4\t20",
		"chr1.200\t11\t20",
		"chr1.300\t19\t20",
	})

	assert.Nil(t, err)
	assert.Equal(t, []float64{0.25, 0.25, 0.25}, pvalues)
}

func TestBinomialPValuesRowCountMismatchFails(t *testing.T) {
	s := newScriptedStatsService(t, "", "echo 0.25\n")

	_, err := s.BinomialPValues(context.Background(), []string{
		"chr1.100\t4\t20",
		"chr1.200\t11\t20",
	})

	assert.NotNil(t, err)
}
