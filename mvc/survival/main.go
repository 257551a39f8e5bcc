package survival

import (
	"fmt"
	"net/http"
	"time"

	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/datasets"
	"proteinpaint/api/models/dtos"
	errorsDto "proteinpaint/api/models/dtos/errors"
	"proteinpaint/api/mvc"
	"proteinpaint/api/services/expression"
	"proteinpaint/api/services/parsing"
	"proteinpaint/api/services/stats"

	"github.com/labstack/echo"
)

// SurvivalQuery serves Kaplan-Meier curves over caller-supplied sample
// sets, or over a cohort dichotomized by one gene's expression.
func SurvivalQuery(c echo.Context) error {
	fmt.Printf("[%s] - SurvivalQuery hit!\n", time.Now())
	gc := mvc.RetrieveCommonElements(c)

	req := &dtos.SurvivalRequest{}
	if bindErr := c.Bind(req); bindErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateSimpleErrorResponse("malformed request body"))
	}

	var (
		sets    []stats.SampleSet
		cutoffs []float64
		err     error
	)
	if len(req.SampleSets) > 0 {
		sets = fromRequestSets(req.SampleSets)
	} else {
		sets, cutoffs, err = fromExpressionSplit(c, req)
		if err != nil {
			return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(err))
		}
	}

	response := &dtos.SurvivalResponse{
		SampleSets: make([]*dtos.SurvivalSet, 0, len(sets)),
		Cutoffs:    cutoffs,
	}

	nonEmpty := 0
	for _, set := range sets {
		if len(set.Entries) > 0 {
			nonEmpty++
		}
		response.SampleSets = append(response.SampleSets, &dtos.SurvivalSet{
			Name:  set.Label,
			Steps: stats.KaplanMeier(set.Entries),
		})
	}

	// the log-rank test only makes sense across two or more arms;
	// a failed test is reported alongside the curves, not instead of them
	if nonEmpty >= 2 {
		pvalue, pvalueErr := gc.StatsService.SurvivalPValue(c.Request().Context(), sets)
		if pvalueErr != nil {
			response.PValueErr = pvalueErr.Error()
		} else {
			response.PValue = &pvalue
		}
	}

	return c.JSON(http.StatusOK, response)
}

func fromRequestSets(requestSets []dtos.SampleSetDto) []stats.SampleSet {
	sets := make([]stats.SampleSet, 0, len(requestSets))
	for _, requestSet := range requestSets {
		set := stats.SampleSet{Label: requestSet.Name}
		for _, entry := range requestSet.Entries {
			set.Entries = append(set.Entries, stats.SurvivalEntry{
				Time:     entry.Time,
				Censored: entry.Censored,
			})
		}
		sets = append(sets, set)
	}
	return sets
}

// fromExpressionSplit dichotomizes the cohort on one gene's expression
// and maps each sample to its follow-up observation from the cohort
// annotation. Samples lacking follow-up columns drop out silently.
func fromExpressionSplit(c echo.Context, req *dtos.SurvivalRequest) ([]stats.SampleSet, []float64, error) {
	gc := mvc.RetrieveCommonElements(c)

	if req.Gene == "" || req.QueryKey == "" {
		return nil, nil, apperror.New(apperror.ConfigError, "survival split needs querykey and gene")
	}

	ds, q, resolveErr := mvc.ResolveDatasetQuery(gc, req.DsLabel, req.QueryKey, false, "", "", "")
	if resolveErr != nil {
		return nil, nil, resolveErr
	}

	trackFile, workingDir, trackErr := gc.CacheService.ResolveTrack(q.File, q.Url, q.IndexUrl)
	if trackErr != nil {
		return nil, nil, trackErr
	}

	counters := &parsing.Counters{}
	values, fetchErr := gc.ExpressionService.FetchGeneValues(c.Request().Context(),
		trackFile, workingDir, req.Gene, req.Region, counters)
	if fetchErr != nil {
		return nil, nil, fetchErr
	}

	samples := make([]expression.SampleValue, 0, len(values))
	for sample, value := range values {
		samples = append(samples, expression.SampleValue{Sample: sample, Value: value})
	}
	if len(samples) == 0 {
		return nil, nil, apperror.Newf(apperror.StatsError, "no expression values for gene %s", req.Gene)
	}

	var (
		sets    []stats.SampleSet
		cutoffs []float64
	)
	switch req.Split {
	case "quartile":
		groups, quartileCutoffs := expression.QuartileSplit(samples)
		labels := [4]string{"Quartile 1", "Quartile 2", "Quartile 3", "Quartile 4"}
		for i, group := range groups {
			sets = append(sets, toSampleSet(ds, labels[i], group))
		}
		cutoffs = quartileCutoffs[:]

	default:
		// "median" and unspecified both mean a two-arm split
		below, above, cutoff := expression.MedianSplit(samples)
		sets = append(sets,
			toSampleSet(ds, "Low expression", below),
			toSampleSet(ds, "High expression", above))
		cutoffs = []float64{cutoff}
	}

	return sets, cutoffs, nil
}

func toSampleSet(ds *datasets.Dataset, label string, samples []expression.SampleValue) stats.SampleSet {
	set := stats.SampleSet{Label: label}
	for _, sampleValue := range samples {
		followupTime, dead, ok := ds.SurvivalEntry(sampleValue.Sample)
		if !ok {
			continue
		}
		censored := 1
		if dead {
			censored = 0
		}
		set.Entries = append(set.Entries, stats.SurvivalEntry{
			Time:     followupTime,
			Censored: censored,
		})
	}
	return set
}
