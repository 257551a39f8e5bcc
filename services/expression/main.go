package expression

import (
	"context"
	"math"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/datasets"
	"proteinpaint/api/models/dtos"
	"proteinpaint/api/models/records"
	"proteinpaint/api/repositories/tabix"
	"proteinpaint/api/services/grouping"
	"proteinpaint/api/services/parsing"
	"proteinpaint/api/services/stats"

	"github.com/ahmetb/go-linq"
)

var ErrEmptyCohort = apperror.New(apperror.StatsError, "cannot rank against an empty cohort")

// Rank returns the percentile rank (0-100) of a value against an
// ascending-sorted cohort distribution: the index of the first cohort
// value strictly greater than it, scaled by ceil(100*i/n). A value at
// or beyond the top of the cohort ranks 100, at or below the bottom 0.
func Rank(value float64, sortedCohortValues []float64) (int, error) {
	if len(sortedCohortValues) == 0 {
		return 0, ErrEmptyCohort
	}

	firstGreater := -1
	for i, cohortValue := range sortedCohortValues {
		if cohortValue > value {
			firstGreater = i
			break
		}
	}

	if firstGreater == -1 || firstGreater == len(sortedCohortValues)-1 {
		return 100, nil
	}
	if firstGreater == 0 {
		return 0, nil
	}
	return int(math.Ceil(100 * float64(firstGreater) / float64(len(sortedCohortValues)))), nil
}

// SampleValue pairs a sample with its numeric track value.
type SampleValue struct {
	Sample string
	Value  float64
}

func sortByValue(samples []SampleValue) []SampleValue {
	sorted := make([]SampleValue, 0, len(samples))
	linq.From(samples).
		OrderBy(func(i interface{}) interface{} { return i.(SampleValue).Value }).
		ThenBy(func(i interface{}) interface{} { return i.(SampleValue).Sample }).
		ToSlice(&sorted)
	return sorted
}

// MedianSplit dichotomizes a cohort at ceil(n/2) for survival-group
// comparison, reporting the literal cutoff value used for display.
func MedianSplit(samples []SampleValue) (below []SampleValue, above []SampleValue, cutoff float64) {
	sorted := sortByValue(samples)
	cut := int(math.Ceil(float64(len(sorted)) / 2))
	if cut == 0 {
		return nil, nil, 0
	}
	return sorted[:cut], sorted[cut:], sorted[cut-1].Value
}

// QuartileSplit cuts a cohort at the 25th/50th/75th percentile index
// boundaries, producing four groups and the three cutoff values.
func QuartileSplit(samples []SampleValue) ([4][]SampleValue, [3]float64) {
	sorted := sortByValue(samples)
	n := float64(len(sorted))

	cut1 := int(math.Ceil(n * 0.25))
	cut2 := int(math.Ceil(n * 0.5))
	cut3 := int(math.Ceil(n * 0.75))

	var groups [4][]SampleValue
	var cutoffs [3]float64
	if len(sorted) == 0 {
		return groups, cutoffs
	}

	groups[0] = sorted[:cut1]
	groups[1] = sorted[cut1:cut2]
	groups[2] = sorted[cut2:cut3]
	groups[3] = sorted[cut3:]
	cutoffs = [3]float64{sorted[cut1-1].Value, sorted[cut2-1].Value, sorted[cut3-1].Value}

	return groups, cutoffs
}

// Service backs the expression operations that read a gene expression
// track: cohort boxplots per sample group, and cohort value
// distributions for ranking.
type Service struct {
	Executor *tabix.Executor
	Parser   *parsing.Parser
	Config   *models.Config
}

func NewExpressionService(executor *tabix.Executor, parser *parsing.Parser, cfg *models.Config) *Service {
	return &Service{
		Executor: executor,
		Parser:   parser,
		Config:   cfg,
	}
}

// FetchGeneValues queries the expression track over one region and
// returns each sample's value for the requested gene.
func (s *Service) FetchGeneValues(ctx context.Context, trackFile string, workingDir string,
	gene string, region records.GenomicRegion, counters *parsing.Counters) (map[string]float64, error) {

	lineBatches, queryErr := s.Executor.QueryRegions(ctx, s.Config.Tools.Tabix, []string{trackFile},
		[]records.GenomicRegion{region}, workingDir)
	if queryErr != nil {
		return nil, queryErr
	}

	values := make(map[string]float64)
	for _, lines := range lineBatches {
		for _, line := range lines {
			expressionValue, parseErr := s.Parser.ParseExpressionLine(line, counters)
			if parseErr != nil {
				return nil, parseErr
			}
			if expressionValue == nil || expressionValue.Gene != gene {
				continue
			}
			values[expressionValue.Sample] = expressionValue.Value
		}
	}
	return values, nil
}

// GroupBoxplots buckets per-sample expression values into cohort
// groups and computes a five-number summary per group.
func GroupBoxplots(values map[string]float64,
	annotations map[string]map[string]string,
	cfg *datasets.GroupSampleByAttr) *dtos.ExpressionResponse {

	response := &dtos.ExpressionResponse{
		Groups: make([]*dtos.ExpressionGroup, 0),
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}

	// reuse the sample grouper by handing it empty record lists
	samplesToItems := make(map[string][]records.MutationRecord)
	for sample, value := range values {
		samplesToItems[sample] = nil
		if value < response.Min {
			response.Min = value
		}
		if value > response.Max {
			response.Max = value
		}
	}
	if len(samplesToItems) == 0 {
		response.Min, response.Max = 0, 0
		return response
	}

	for _, sampleGroup := range grouping.Group(samplesToItems, annotations, cfg) {
		groupValues := make([]float64, 0, len(sampleGroup.Samples))
		for _, entry := range sampleGroup.Samples {
			groupValues = append(groupValues, values[entry.SampleName])
		}

		boxplot := stats.ComputeBoxplot(groupValues)
		response.Groups = append(response.Groups, &dtos.ExpressionGroup{
			Name:       sampleGroup.Name,
			Attributes: sampleGroup.Attributes,
			Boxplots:   []*dtos.Boxplot{boxplot},
		})
	}

	return response
}

// SortedValues flattens a sample->value map into the ascending value
// distribution used by Rank.
func SortedValues(values map[string]float64) []float64 {
	var sorted []float64
	linq.From(values).
		Select(func(kv interface{}) interface{} { return kv.(linq.KeyValue).Value }).
		OrderBy(func(v interface{}) interface{} { return v.(float64) }).
		ToSlice(&sorted)
	return sorted
}
