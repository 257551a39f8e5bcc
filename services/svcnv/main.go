package svcnv

import (
	"context"
	"fmt"
	"time"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/datasets"
	"proteinpaint/api/models/dtos"
	"proteinpaint/api/models/records"
	"proteinpaint/api/repositories/tabix"
	"proteinpaint/api/services/expression"
	"proteinpaint/api/services/filtering"
	"proteinpaint/api/services/grouping"
	"proteinpaint/api/services/indexcache"
	"proteinpaint/api/services/parsing"
)

// Service orchestrates the combined CNV/LOH/SV/fusion/ITD/VCF query:
// resolve the track, fan out one subprocess per region, decode and
// filter the records, bucket them into cohort sample groups and
// attach expression ranks. One call serves one request; nothing is
// retained between calls except the on-disk index cache.
type Service struct {
	Executor          *tabix.Executor
	Cache             *indexcache.CacheService
	Parser            *parsing.Parser
	ExpressionService *expression.Service
	Config            *models.Config
}

func NewSvcnvService(executor *tabix.Executor, cache *indexcache.CacheService,
	parser *parsing.Parser, expressionService *expression.Service, cfg *models.Config) *Service {
	return &Service{
		Executor:          executor,
		Cache:             cache,
		Parser:            parser,
		ExpressionService: expressionService,
		Config:            cfg,
	}
}

func (s *Service) Query(ctx context.Context, ds *datasets.Dataset, q *datasets.Query, req *dtos.SvcnvRequest) (*dtos.SvcnvResponse, error) {
	if len(req.Rglst) == 0 {
		return nil, apperror.New(apperror.ConfigError, "no regions to query")
	}
	for _, region := range req.Rglst {
		if region.Chr == "" || region.Start > region.Stop {
			return nil, apperror.Newf(apperror.ConfigError, "invalid region %s", region.String())
		}
	}

	trackFile, workingDir, trackErr := s.Cache.ResolveTrack(q.File, q.Url, q.IndexUrl)
	if trackErr != nil {
		return nil, trackErr
	}

	counters := &parsing.Counters{}

	// ---- svcnv track rows, one subprocess per region
	began := time.Now()
	lineBatches, queryErr := s.Executor.QueryRegions(ctx, s.Config.Tools.Tabix, []string{trackFile}, req.Rglst, workingDir)
	if queryErr != nil {
		return nil, queryErr
	}
	if s.Config.Debug {
		fmt.Printf("svcnv track %s: %d region(s) in %s\n", trackFile, len(req.Rglst), time.Since(began))
	}

	var allRecords []records.MutationRecord
	for _, lines := range lineBatches {
		for _, line := range lines {
			record, parseErr := s.Parser.ParseSvcnvLine(line, counters)
			if parseErr != nil {
				return nil, parseErr
			}
			if record != nil {
				allRecords = append(allRecords, record)
			}
		}
	}

	response := &dtos.SvcnvResponse{}

	// ---- co-located VCF tracks
	dataVcf, vcfErr := s.queryVcfTracks(ctx, q, req, workingDir, counters, response)
	if vcfErr != nil {
		return nil, vcfErr
	}

	// ---- filter
	// custom tracks carry no dataset, hence no annotation
	var annotations map[string]map[string]string
	if ds != nil {
		annotations = ds.SampleAnnotations()
	}
	spec := buildFilterSpec(q, req)
	filtered := filtering.Apply(allRecords, spec, annotations)

	var vcfAsRecords []records.MutationRecord
	for _, snvIndel := range dataVcf {
		vcfAsRecords = append(vcfAsRecords, snvIndel)
	}
	for _, item := range filtering.Apply(vcfAsRecords, spec, annotations) {
		response.DataVcf = append(response.DataVcf, item.(*records.SnvIndel))
	}

	if req.ShowOnlyCnvWithSv {
		markCnvSvSupport(filtered)
	}

	// ---- group per sample, reclassifying copy-neutral LOH
	samplesToItems := make(map[string][]records.MutationRecord)
	for _, item := range filtered {
		sample := item.SampleName()
		if sample == "" {
			continue
		}
		samplesToItems[sample] = append(samplesToItems[sample], item)
	}
	for sample, items := range samplesToItems {
		samplesToItems[sample] = grouping.ReclassifyCopyNeutralLoh(items)
	}

	var groupConfig *datasets.GroupSampleByAttr
	if !req.IsCustom && req.SingleSample == "" && ds != nil && ds.Cohort != nil {
		groupConfig = ds.Cohort.GroupSampleBy
	}
	response.SampleGroups = grouping.Group(samplesToItems, annotations, groupConfig)

	// ---- expression ranks
	if req.ExpressionRankGene != "" && ds != nil && q.ExpressionQueryKey != "" {
		if rankErr := s.attachExpressionRanks(ctx, ds, q.ExpressionQueryKey, req, response, counters); rankErr != nil {
			return nil, rankErr
		}
	}

	if req.SingleSample != "" && annotations != nil {
		if attrs, annotated := annotations[req.SingleSample]; annotated {
			response.SampleAnnotation = map[string]map[string]string{req.SingleSample: attrs}
		}
	}

	response.SkippedLines = counters.ToSkippedLines()
	return response, nil
}

// queryVcfTracks runs the dataset's co-located VCF files over the same
// regions, honoring the basepair range limit above which VCF data is
// skipped entirely and the limit echoed back.
func (s *Service) queryVcfTracks(ctx context.Context, q *datasets.Query, req *dtos.SvcnvRequest,
	workingDir string, counters *parsing.Counters, response *dtos.SvcnvResponse) ([]*records.SnvIndel, error) {

	if len(q.VcfFiles) == 0 {
		return nil, nil
	}

	if q.VcfRangeLimit > 0 {
		span := 0
		for _, region := range req.Rglst {
			span += region.Stop - region.Start
		}
		if span > q.VcfRangeLimit {
			response.VcfRangeLimit = q.VcfRangeLimit
			return nil, nil
		}
	}

	var dataVcf []*records.SnvIndel
	for _, vcfFile := range q.VcfFiles {
		headerLines, headerErr := s.Executor.Header(ctx, s.Config.Tools.Tabix, vcfFile, workingDir)
		if headerErr != nil {
			return nil, headerErr
		}
		sampleNames, sampleErr := s.Parser.ParseVcfSampleHeader(headerLines)
		if sampleErr != nil {
			return nil, sampleErr
		}

		lineBatches, queryErr := s.Executor.QueryRegions(ctx, s.Config.Tools.Tabix, []string{vcfFile}, req.Rglst, workingDir)
		if queryErr != nil {
			return nil, queryErr
		}

		for _, lines := range lineBatches {
			for _, line := range lines {
				record, parseErr := s.Parser.ParseVcfLine(line, sampleNames, q.Germline, counters)
				if parseErr != nil {
					return nil, parseErr
				}
				if record != nil {
					dataVcf = append(dataVcf, record)
				}
			}
		}
	}

	return dataVcf, nil
}

func buildFilterSpec(q *datasets.Query, req *dtos.SvcnvRequest) filtering.Spec {
	spec := filtering.Spec{
		ValueCutoff:        req.ValueCutoff,
		BplengthUpperLimit: req.BplengthUpperLimit,
		HiddenSampleAttr:   q.HiddenSampleAttr,
		HiddenMutationAttr: q.HiddenMutationAttr,
		SingleSample:       req.SingleSample,
	}
	if req.FocalSizeLimit > 0 && (spec.BplengthUpperLimit == 0 || req.FocalSizeLimit < spec.BplengthUpperLimit) {
		spec.BplengthUpperLimit = req.FocalSizeLimit
	}
	// request-level hidden sets override the dataset defaults
	if len(req.HiddenSampleAttr) > 0 {
		spec.HiddenSampleAttr = req.HiddenSampleAttr
	}
	if len(req.HiddenMutationAttr) > 0 {
		spec.HiddenMutationAttr = req.HiddenMutationAttr
	}
	return spec
}

// markCnvSvSupport tags CNVs having an in-window SV breakend from the
// same sample. The marker is a hint only; see filtering.MarkCnvWithSvSupport
// for the known blind spot with out-of-window breakpoints.
func markCnvSvSupport(items []records.MutationRecord) {
	supported := filtering.MarkCnvWithSvSupport(items)
	for _, item := range items {
		cnv, isCnv := item.(*records.Cnv)
		if !isCnv {
			continue
		}
		if cnv.Attr == nil {
			cnv.Attr = make(map[string]string)
		}
		if supported[cnv] {
			cnv.Attr["svsupport"] = "yes"
		} else {
			cnv.Attr["svsupport"] = "no"
		}
	}
}

// attachExpressionRanks fetches the gene's expression values and ranks
// every shown sample against its own group's value distribution.
func (s *Service) attachExpressionRanks(ctx context.Context, ds *datasets.Dataset, expressionQueryKey string,
	req *dtos.SvcnvRequest, response *dtos.SvcnvResponse, counters *parsing.Counters) error {

	expressionQuery, queryErr := ds.Query(expressionQueryKey)
	if queryErr != nil {
		return queryErr
	}
	trackFile, workingDir, trackErr := s.Cache.ResolveTrack(expressionQuery.File, expressionQuery.Url, expressionQuery.IndexUrl)
	if trackErr != nil {
		return trackErr
	}

	values, fetchErr := s.ExpressionService.FetchGeneValues(ctx, trackFile, workingDir,
		req.ExpressionRankGene, req.Rglst[0], counters)
	if fetchErr != nil {
		return fetchErr
	}
	if len(values) == 0 {
		return nil
	}

	for _, group := range response.SampleGroups {
		groupValues := make(map[string]float64)
		for _, entry := range group.Samples {
			if value, hasValue := values[entry.SampleName]; hasValue {
				groupValues[entry.SampleName] = value
			}
		}
		if len(groupValues) == 0 {
			continue
		}
		sorted := expression.SortedValues(groupValues)

		for _, entry := range group.Samples {
			value, hasValue := groupValues[entry.SampleName]
			if !hasValue {
				continue
			}
			rank, rankErr := expression.Rank(value, sorted)
			if rankErr != nil {
				return rankErr
			}
			v := value
			r := rank
			entry.ExpressionValue = &v
			entry.ExpressionRank = &r
		}
	}

	return nil
}
