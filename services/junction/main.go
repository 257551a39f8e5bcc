package junction

import (
	"context"

	"github.com/ahmetb/go-linq"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/datasets"
	"proteinpaint/api/models/dtos"
	"proteinpaint/api/repositories/tabix"
	"proteinpaint/api/services/indexcache"
	"proteinpaint/api/services/parsing"
	"proteinpaint/api/services/stats"
	"proteinpaint/api/utils"
)

// Service answers splice junction queries: per junction, how many
// samples carry it and how their read counts distribute.
type Service struct {
	Executor *tabix.Executor
	Cache    *indexcache.CacheService
	Parser   *parsing.Parser
	Config   *models.Config
}

func NewJunctionService(executor *tabix.Executor, cache *indexcache.CacheService,
	parser *parsing.Parser, cfg *models.Config) *Service {
	return &Service{
		Executor: executor,
		Cache:    cache,
		Parser:   parser,
		Config:   cfg,
	}
}

func (s *Service) Query(ctx context.Context, q *datasets.Query, req *dtos.JunctionRequest) (*dtos.JunctionResponse, error) {
	if len(req.Rglst) == 0 {
		return nil, apperror.New(apperror.ConfigError, "no regions to query")
	}

	trackFile, workingDir, trackErr := s.Cache.ResolveTrack(q.File, q.Url, q.IndexUrl)
	if trackErr != nil {
		return nil, trackErr
	}

	counters := &parsing.Counters{}

	lineBatches, queryErr := s.Executor.QueryRegions(ctx, s.Config.Tools.Tabix, []string{trackFile}, req.Rglst, workingDir)
	if queryErr != nil {
		return nil, queryErr
	}

	// a junction spanning two requested regions comes back twice;
	// dedupe on coordinates
	type junctionKey struct {
		chr         string
		start, stop int
	}
	seen := make(map[junctionKey]bool)

	allSamples := make(map[string]bool)
	var junctions []*dtos.Junction

	for _, lines := range lineBatches {
		for _, line := range lines {
			event, parseErr := s.Parser.ParseJunctionLine(line, counters)
			if parseErr != nil {
				return nil, parseErr
			}
			if event == nil {
				continue
			}

			key := junctionKey{chr: event.Chr, start: event.Start, stop: event.Stop}
			if seen[key] {
				continue
			}
			seen[key] = true

			if len(req.HiddenTypes) > 0 && utils.StringInSlice(event.Type, req.HiddenTypes) {
				continue
			}

			readCounts := make([]float64, 0, len(event.Samples))
			for _, eventSample := range event.Samples {
				allSamples[eventSample.Sample] = true
				if req.ReadCountCutoff > 0 && eventSample.ReadCount < req.ReadCountCutoff {
					continue
				}
				readCounts = append(readCounts, float64(eventSample.ReadCount))
			}
			// junctions with no sample above the cutoff drop out
			if len(readCounts) == 0 {
				continue
			}

			boxplot := stats.ComputeBoxplot(readCounts)
			junctions = append(junctions, &dtos.Junction{
				Chr:             event.Chr,
				Start:           event.Start,
				Stop:            event.Stop,
				Type:            event.Type,
				SampleCount:     len(readCounts),
				MedianReadCount: medianOf(readCounts),
				ReadCounts:      boxplot,
			})
		}
	}

	var sorted []*dtos.Junction
	linq.From(junctions).
		OrderByDescending(func(j interface{}) interface{} { return j.(*dtos.Junction).MedianReadCount }).
		ThenBy(func(j interface{}) interface{} { return j.(*dtos.Junction).Start }).
		ToSlice(&sorted)
	if sorted == nil {
		sorted = []*dtos.Junction{}
	}

	return &dtos.JunctionResponse{
		Junctions:    sorted,
		SampleCount:  len(allSamples),
		SkippedLines: counters.ToSkippedLines(),
	}, nil
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sorted []float64
	linq.From(values).
		OrderBy(func(v interface{}) interface{} { return v.(float64) }).
		ToSlice(&sorted)
	return sorted[len(sorted)/2]
}
