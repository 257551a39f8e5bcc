package ase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/dtos"
	"proteinpaint/api/models/records"
	"proteinpaint/api/repositories/tabix"
	"proteinpaint/api/services/parsing"
	"proteinpaint/api/services/stats"
)

const defaultMinCoverage = 10

// Service measures allele-specific expression over one gene of one
// sample: heterozygous markers come from the sample's germline VCF,
// per-allele RNA read counts from a pileup over its RNA bam, and each
// marker gets a binomial test of the alt fraction against 0.5.
type Service struct {
	Executor *tabix.Executor
	Parser   *parsing.Parser
	Stats    *stats.Service
	Config   *models.Config
}

func NewAseService(executor *tabix.Executor, parser *parsing.Parser, statsService *stats.Service, cfg *models.Config) *Service {
	return &Service{
		Executor: executor,
		Parser:   parser,
		Stats:    statsService,
		Config:   cfg,
	}
}

func (s *Service) Query(ctx context.Context, req *dtos.AseRequest) (*dtos.AseResponse, error) {
	if req.VcfFile == "" || req.RnaBamFile == "" {
		return nil, apperror.New(apperror.ConfigError, "ase query needs both vcffile and rnabamfile")
	}
	if req.Chr == "" || req.Start >= req.Stop {
		return nil, apperror.Newf(apperror.ConfigError, "invalid ase region %s:%d-%d", req.Chr, req.Start, req.Stop)
	}

	minCoverage := req.MinCoverage
	if minCoverage <= 0 {
		minCoverage = defaultMinCoverage
	}

	counters := &parsing.Counters{}

	hetMarkers, markerErr := s.heterozygousMarkers(ctx, req, counters)
	if markerErr != nil {
		return nil, markerErr
	}

	response := &dtos.AseResponse{
		Gene:    req.Gene,
		Sample:  req.Sample,
		Markers: []*dtos.AseMarker{},
	}

	if len(hetMarkers) == 0 {
		response.SkippedLines = counters.ToSkippedLines()
		return response, nil
	}

	// a truncated BAM makes the pileup silently under-count; reject it up front
	if _, checkErr := s.Executor.Run(ctx, s.Config.Tools.Samtools,
		[]string{"quickcheck", req.RnaBamFile}, "", nil); checkErr != nil {
		return nil, apperror.Wrap(apperror.ExecError, fmt.Sprintf("rna bam %s failed quickcheck", req.RnaBamFile), checkErr)
	}

	counts, pileupErr := s.pileupCounts(ctx, req)
	if pileupErr != nil {
		return nil, pileupErr
	}

	var markers []*dtos.AseMarker
	var binomialRows []string
	for _, marker := range hetMarkers {
		count, covered := counts[marker.Pos]
		if !covered || count.ref+count.alt < minCoverage {
			continue
		}
		markers = append(markers, &dtos.AseMarker{
			Chr:      marker.Chr,
			Pos:      marker.Pos,
			Ref:      marker.Ref,
			Alt:      marker.Alt,
			RefCount: count.ref,
			AltCount: count.alt,
		})
		binomialRows = append(binomialRows, fmt.Sprintf("%s.%d\t%d\t%d",
			marker.Chr, marker.Pos, count.alt, count.ref+count.alt))
	}

	if len(markers) > 0 {
		pvalues, pvalueErr := s.Stats.BinomialPValues(ctx, binomialRows)
		if pvalueErr != nil {
			return nil, pvalueErr
		}
		for i, marker := range markers {
			marker.PValue = pvalues[i]
			if pvalues[i] < 0.05 {
				response.ImbalancedCount++
			}
		}
	}

	response.Markers = markers
	response.TestedCount = len(markers)
	response.SkippedLines = counters.ToSkippedLines()
	return response, nil
}

// heterozygousMarkers scans the germline VCF over the gene region for
// single-nucleotide markers the sample calls heterozygous; only those
// can separate the two alleles in RNA reads.
func (s *Service) heterozygousMarkers(ctx context.Context, req *dtos.AseRequest, counters *parsing.Counters) ([]*records.SnvIndel, error) {
	headerLines, headerErr := s.Executor.Header(ctx, s.Config.Tools.Tabix, req.VcfFile, "")
	if headerErr != nil {
		return nil, headerErr
	}
	sampleNames, sampleErr := s.Parser.ParseVcfSampleHeader(headerLines)
	if sampleErr != nil {
		return nil, sampleErr
	}

	region := records.GenomicRegion{Chr: req.Chr, Start: req.Start, Stop: req.Stop}
	lineBatches, queryErr := s.Executor.QueryRegions(ctx, s.Config.Tools.Tabix, []string{req.VcfFile},
		[]records.GenomicRegion{region}, "")
	if queryErr != nil {
		return nil, queryErr
	}

	var hetMarkers []*records.SnvIndel
	for _, lines := range lineBatches {
		for _, line := range lines {
			record, parseErr := s.Parser.ParseVcfLine(line, sampleNames, false, counters)
			if parseErr != nil {
				return nil, parseErr
			}
			if record == nil {
				continue
			}
			if len(record.Ref) != 1 || len(record.Alt) != 1 {
				// indels and multiallelic sites confound the pileup
				continue
			}
			for _, sampleData := range record.SampleData {
				if sampleData.Sample == req.Sample && sampleData.GenotypeType == "HETEROZYGOUS" {
					hetMarkers = append(hetMarkers, record)
					break
				}
			}
		}
	}
	return hetMarkers, nil
}

type alleleCount struct {
	ref int
	alt int
}

// pileupCounts runs one bcftools mpileup over the whole region and
// reads per-position ref/alt depths off the DP4 INFO field.
func (s *Service) pileupCounts(ctx context.Context, req *dtos.AseRequest) (map[int]alleleCount, error) {
	args := []string{"mpileup", "-r", fmt.Sprintf("%s:%d-%d", req.Chr, req.Start, req.Stop)}
	if req.FastaFile != "" {
		args = append(args, "-f", req.FastaFile)
	}
	args = append(args, req.RnaBamFile)

	lines, runErr := s.Executor.Run(ctx, s.Config.Tools.Bcftools, args, "", nil)
	if runErr != nil {
		return nil, runErr
	}

	counts := make(map[int]alleleCount)
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		columns := strings.Split(line, "\t")
		if len(columns) < 8 {
			continue
		}
		pos, posErr := strconv.Atoi(columns[1])
		if posErr != nil {
			continue
		}
		refFwd, refRev, altFwd, altRev, ok := parseDp4(columns[7])
		if !ok {
			continue
		}
		counts[pos] = alleleCount{ref: refFwd + refRev, alt: altFwd + altRev}
	}
	return counts, nil
}

// parseDp4 extracts the `DP4=ref-fwd,ref-rev,alt-fwd,alt-rev` counts
// from a VCF INFO column.
func parseDp4(info string) (int, int, int, int, bool) {
	for _, field := range strings.Split(info, ";") {
		if !strings.HasPrefix(field, "DP4=") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(field, "DP4="), ",")
		if len(parts) != 4 {
			return 0, 0, 0, 0, false
		}
		values := make([]int, 4)
		for i, part := range parts {
			v, convErr := strconv.Atoi(part)
			if convErr != nil {
				return 0, 0, 0, 0, false
			}
			values[i] = v
		}
		return values[0], values[1], values[2], values[3], true
	}
	return 0, 0, 0, 0, false
}
