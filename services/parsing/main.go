package parsing

import (
	"fmt"
	"strconv"
	"strings"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/constants"
	"proteinpaint/api/models/constants/chromosome"
	"proteinpaint/api/models/constants/datatype"
	p "proteinpaint/api/models/constants/ploidy"
	z "proteinpaint/api/models/constants/zygosity"
	"proteinpaint/api/models/dtos"
	"proteinpaint/api/models/records"

	"github.com/Jeffail/gabs"
)

// Parser decodes tabix output lines into typed mutation records. In
// tolerant mode (the default) malformed lines bump a per-request
// counter and are skipped; in strict mode they fail the request.
type Parser struct {
	Strict bool
}

func NewParser(cfg *models.Config) *Parser {
	return &Parser{Strict: cfg.Query.StrictParsing}
}

// Counters tracks the malformed rows tolerated during one request.
// Never shared across requests.
type Counters struct {
	BadJson         int
	BadCoordinate   int
	UnknownDataType int
	BadVcf          int
}

func (c *Counters) Total() int {
	return c.BadJson + c.BadCoordinate + c.UnknownDataType + c.BadVcf
}

func (c *Counters) ToSkippedLines() dtos.SkippedLines {
	if c.Total() == 0 {
		return nil
	}
	skipped := dtos.SkippedLines{}
	if c.BadJson > 0 {
		skipped["badjson"] = c.BadJson
	}
	if c.BadCoordinate > 0 {
		skipped["badcoordinate"] = c.BadCoordinate
	}
	if c.UnknownDataType > 0 {
		skipped["unknowndt"] = c.UnknownDataType
	}
	if c.BadVcf > 0 {
		skipped["badvcf"] = c.BadVcf
	}
	return skipped
}

// skip reports a tolerable per-line failure: nil error in tolerant
// mode, a parse error in strict mode.
func (pa *Parser) skip(counter *int, format string, args ...interface{}) error {
	*counter++
	if pa.Strict {
		return apperror.Newf(apperror.ParseError, format, args...)
	}
	return nil
}

// ---- svcnv track lines

// ParseSvcnvLine decodes one `chr \t start \t stop \t json` row of an
// svcnv track into its typed record. A nil record with nil error means
// the line was tolerably skipped.
func (pa *Parser) ParseSvcnvLine(line string, counters *Counters) (records.MutationRecord, error) {
	columns := strings.Split(line, "\t")
	if len(columns) < 4 {
		return nil, pa.skip(&counters.BadJson, "svcnv line has %d columns, expected 4", len(columns))
	}

	chr := columns[0]
	start, startErr := strconv.Atoi(columns[1])
	stop, stopErr := strconv.Atoi(columns[2])
	if startErr != nil || stopErr != nil {
		return nil, pa.skip(&counters.BadCoordinate, "svcnv line has non-numeric coordinates: %s %s", columns[1], columns[2])
	}

	payload, jsonErr := gabs.ParseJSON([]byte(columns[3]))
	if jsonErr != nil {
		return nil, pa.skip(&counters.BadJson, "svcnv line payload is not valid JSON: %v", jsonErr)
	}

	dtRaw, dtOk := payload.Path("dt").Data().(float64)
	if !dtOk {
		return nil, pa.skip(&counters.BadJson, "svcnv line payload missing dt tag")
	}
	dt := datatype.CastToDataType(int(dtRaw))

	sample, _ := payload.Path("sample").Data().(string)
	attr := payloadAttr(payload)

	switch dt {
	case datatype.Cnv:
		value, valueOk := payload.Path("value").Data().(float64)
		if !valueOk {
			return nil, pa.skip(&counters.BadJson, "cnv payload missing numeric value")
		}
		return &records.Cnv{Dt: dt, Chr: chr, Start: start, Stop: stop, Sample: sample, Value: value, Attr: attr}, nil

	case datatype.Loh:
		segmean, segmeanOk := payload.Path("segmean").Data().(float64)
		if !segmeanOk {
			return nil, pa.skip(&counters.BadJson, "loh payload missing numeric segmean")
		}
		return &records.Loh{Dt: dt, Chr: chr, Start: start, Stop: stop, Sample: sample, Segmean: segmean, Attr: attr}, nil

	case datatype.Sv, datatype.FusionRna:
		chrA, posA, chrB, posB, pairErr := breakendPair(payload, chr, start)
		if pairErr != nil {
			return nil, pa.skip(&counters.BadJson, "%v", pairErr)
		}
		if dt == datatype.Sv {
			return &records.Sv{Dt: dt, ChrA: chrA, PosA: posA, ChrB: chrB, PosB: posB, Sample: sample, Attr: attr}, nil
		}
		return &records.Fusion{Dt: dt, ChrA: chrA, PosA: posA, ChrB: chrB, PosB: posB, Sample: sample, Attr: attr}, nil

	case datatype.Itd:
		return &records.Itd{Dt: dt, Chr: chr, Start: start, Stop: stop, Sample: sample, Attr: attr}, nil

	default:
		// unrecognized tags are skipped, never fatal to the batch
		counters.UnknownDataType++
		return nil, nil
	}
}

// breakendPair reads the two SV/fusion endpoints; the mate may be
// given as chrB/posB only, in which case the line position is the
// local endpoint.
func breakendPair(payload *gabs.Container, lineChr string, linePos int) (string, int, string, int, error) {
	chrA, _ := payload.Path("chrA").Data().(string)
	chrB, _ := payload.Path("chrB").Data().(string)

	posA := -1
	if rawPosA, ok := payload.Path("posA").Data().(float64); ok {
		posA = int(rawPosA)
	}
	posB := -1
	if rawPosB, ok := payload.Path("posB").Data().(float64); ok {
		posB = int(rawPosB)
	}

	if chrA == "" && chrB == "" {
		return "", 0, "", 0, fmt.Errorf("sv payload missing both breakends")
	}
	if chrA == "" {
		chrA, posA = lineChr, linePos
	}
	if chrB == "" {
		chrB, posB = lineChr, linePos
	}
	if posA < 0 || posB < 0 {
		return "", 0, "", 0, fmt.Errorf("sv payload missing breakend position")
	}
	return chrA, posA, chrB, posB, nil
}

func payloadAttr(payload *gabs.Container) map[string]string {
	children, childErr := payload.Path("mattr").ChildrenMap()
	if childErr != nil || len(children) == 0 {
		return nil
	}
	attr := make(map[string]string)
	for key, child := range children {
		if value, ok := child.Data().(string); ok {
			attr[key] = value
		}
	}
	return attr
}

// ---- junction track lines

type JunctionSample struct {
	Sample    string
	ReadCount int
}

type JunctionEvent struct {
	Chr     string
	Start   int
	Stop    int
	Type    string
	Samples []JunctionSample
}

// ParseJunctionLine decodes one `chr \t start \t stop \t json` row of
// a splice-junction track.
func (pa *Parser) ParseJunctionLine(line string, counters *Counters) (*JunctionEvent, error) {
	columns := strings.Split(line, "\t")
	if len(columns) < 4 {
		return nil, pa.skip(&counters.BadJson, "junction line has %d columns, expected 4", len(columns))
	}

	start, startErr := strconv.Atoi(columns[1])
	stop, stopErr := strconv.Atoi(columns[2])
	if startErr != nil || stopErr != nil {
		return nil, pa.skip(&counters.BadCoordinate, "junction line has non-numeric coordinates: %s %s", columns[1], columns[2])
	}

	payload, jsonErr := gabs.ParseJSON([]byte(columns[3]))
	if jsonErr != nil {
		return nil, pa.skip(&counters.BadJson, "junction line payload is not valid JSON: %v", jsonErr)
	}

	event := &JunctionEvent{
		Chr:   columns[0],
		Start: start,
		Stop:  stop,
	}
	event.Type, _ = payload.Path("type").Data().(string)

	sampleChildren, childErr := payload.Path("samples").Children()
	if childErr != nil {
		return nil, pa.skip(&counters.BadJson, "junction line payload missing samples")
	}
	for _, sampleChild := range sampleChildren {
		name, _ := sampleChild.Path("sample").Data().(string)
		readCount, readCountOk := sampleChild.Path("readcount").Data().(float64)
		if name == "" || !readCountOk {
			continue
		}
		event.Samples = append(event.Samples, JunctionSample{Sample: name, ReadCount: int(readCount)})
	}
	if len(event.Samples) == 0 {
		return nil, pa.skip(&counters.BadJson, "junction line has no usable samples")
	}

	return event, nil
}

// ---- expression track lines

type ExpressionValue struct {
	Gene   string
	Sample string
	Value  float64
}

// ParseExpressionLine decodes one `chr \t start \t stop \t json` row
// of a gene expression track.
func (pa *Parser) ParseExpressionLine(line string, counters *Counters) (*ExpressionValue, error) {
	columns := strings.Split(line, "\t")
	if len(columns) < 4 {
		return nil, pa.skip(&counters.BadJson, "expression line has %d columns, expected 4", len(columns))
	}

	payload, jsonErr := gabs.ParseJSON([]byte(columns[3]))
	if jsonErr != nil {
		return nil, pa.skip(&counters.BadJson, "expression line payload is not valid JSON: %v", jsonErr)
	}

	gene, _ := payload.Path("gene").Data().(string)
	sample, _ := payload.Path("sample").Data().(string)
	value, valueOk := payload.Path("value").Data().(float64)
	if gene == "" || sample == "" || !valueOk {
		return nil, pa.skip(&counters.BadJson, "expression line payload missing gene/sample/value")
	}

	return &ExpressionValue{Gene: gene, Sample: sample, Value: value}, nil
}

// ---- VCF rows

// ParseVcfSampleHeader extracts the sample name columns from the
// `#CHROM` header line of a VCF (tabix -H output).
func (pa *Parser) ParseVcfSampleHeader(headerLines []string) ([]string, error) {
	for _, line := range headerLines {
		if !strings.HasPrefix(line, "#CHROM") {
			continue
		}
		headers := strings.Split(line, "\t")
		if len(headers) <= 9 {
			// site-only VCF, no samples
			return nil, nil
		}
		return headers[9:], nil
	}
	return nil, apperror.New(apperror.ParseError, "vcf has no #CHROM header line")
}

// ParseVcfLine decodes one VCF row into an SnvIndel record carrying
// one entry per surviving sample. Returns nil (no error) when every
// sample was filtered out, e.g. all homozygous-reference on a
// germline track.
func (pa *Parser) ParseVcfLine(line string, sampleNames []string, dropHomozygousReference bool, counters *Counters) (*records.SnvIndel, error) {
	columns := strings.Split(line, "\t")
	if len(columns) < 8 {
		return nil, pa.skip(&counters.BadVcf, "vcf line has %d columns, expected at least 8", len(columns))
	}

	chrom := columns[0]
	if !chromosome.IsValidHumanChromosome(chrom) {
		return nil, pa.skip(&counters.BadVcf, "vcf line has invalid chromosome %s", chrom)
	}

	pos, posErr := strconv.Atoi(columns[1])
	if posErr != nil {
		return nil, pa.skip(&counters.BadCoordinate, "vcf line has non-numeric position %s", columns[1])
	}

	name := columns[2]
	// check for "empty" IDs (i.e, those with a period) and tokenize with "none"
	if name == "." {
		name = "none"
	}

	ref := columns[3]
	// Split all alleles by comma
	altAlleles := strings.Split(columns[4], ",")

	record := &records.SnvIndel{
		Dt:   datatype.SnvIndel,
		Chr:  chrom,
		Pos:  pos,
		Ref:  ref,
		Alt:  columns[4],
		Name: name,
	}

	if len(columns) < 10 {
		// site-only row
		return record, nil
	}

	// ---- get genotype position from FORMAT
	var (
		hasGenotype      bool = false
		genotypePosition int  = 0
	)
	for i, f := range strings.Split(columns[8], ":") {
		if f == "GT" {
			hasGenotype = true
			genotypePosition = i
			break
		}
	}
	if !hasGenotype {
		return nil, pa.skip(&counters.BadVcf, "vcf line FORMAT has no GT field")
	}

	for sampleIdx, sampleColumn := range columns[9:] {
		if sampleIdx >= len(sampleNames) {
			break
		}

		allValues := strings.Split(sampleColumn, ":")
		if genotypePosition >= len(allValues) {
			continue
		}
		gtString := allValues[genotypePosition]

		zyg, phased, alleleLeft, alleleRight := decodeGenotype(gtString, ref, altAlleles)
		if zyg == z.Unknown && gtString == "." {
			// no call at all
			continue
		}
		if dropHomozygousReference && z.IsHomozygousReference(zyg) {
			// skip adding this sample; germline tracks only surface
			// non-reference calls
			continue
		}

		record.SampleData = append(record.SampleData, records.SampleAllele{
			Sample:       sampleNames[sampleIdx],
			GenotypeType: z.ZygosityToString(zyg),
			AlleleLeft:   alleleLeft,
			AlleleRight:  alleleRight,
			Phased:       phased,
		})
	}

	if len(record.SampleData) == 0 {
		// This variant row has been deemed unnecessary to keep
		return nil, nil
	}

	return record, nil
}

// decodeGenotype classifies a GT string per VCF semantics, resolving
// numeric allele indices against REF/ALT.
func decodeGenotype(gtString string, ref string, altAlleles []string) (constants.Zygosity, bool, string, string) {
	var ploidyValue constants.Ploidy

	// determine ploidy
	if !strings.Contains(gtString, "|") && !strings.Contains(gtString, "/") {
		ploidyValue = p.Haploid
	} else {
		// assume number of "|" or "/" present is 1
		ploidyValue = p.Diploid
	}

	var (
		zyg                constants.Zygosity
		phased             bool
		alleleStringSplits []string
		alleleLeft         int = -1
		alleleRight        int = -1
		errLeft            error
		errRight           error
	)

	switch ploidyValue {
	case p.Haploid:
		// handle haploid

		if gtString == "." {
			alleleLeft = 0
		} else {
			// -- if error, probably an unknown character -- assign -1
			alleleLeft, errLeft = strconv.Atoi(gtString)
			if errLeft != nil {
				alleleLeft = -1
			}
		}

		// -- zygosity:
		if alleleLeft == -1 {
			zyg = z.Unknown
		} else {
			switch alleleLeft {
			default:
				zyg = z.Alternate
				// covers 1 and greater

			case 0:
				zyg = z.Reference
			}
		}

	case p.Diploid:
		// handle diploid

		// -- phase
		phased = strings.Contains(gtString, "|")

		if phased {
			alleleStringSplits = strings.Split(gtString, "|")
		} else {
			alleleStringSplits = strings.Split(gtString, "/")
		}

		// -- alleles
		switch len(alleleStringSplits) {
		case 1:
			if alleleStringSplits[0] == "." {
				alleleLeft = 0
			} else {
				alleleLeft, errLeft = strconv.Atoi(alleleStringSplits[0])
				if errLeft != nil {
					alleleLeft = -1
				}
			}
		case 2:
			// - check and handle when 'gtString' contains '.'s
			if alleleStringSplits[0] == "." && alleleStringSplits[1] == "." {
				alleleLeft = 0
				alleleRight = 0
			} else {
				alleleLeft, errLeft = strconv.Atoi(alleleStringSplits[0])
				if errLeft != nil {
					alleleLeft = -1
				}

				alleleRight, errRight = strconv.Atoi(alleleStringSplits[1])
				if errRight != nil {
					alleleRight = -1
				}
			}
		}

		// -- zygosity:
		if alleleLeft == -1 || alleleRight == -1 {
			zyg = z.Unknown
		} else {
			switch alleleLeft == alleleRight {
			case true:
				switch alleleLeft * alleleRight {
				case 0:
					zyg = z.HomozygousReference
				default:
					zyg = z.HomozygousAlternate
				}
			case false:
				zyg = z.Heterozygous
			}
		}
	}

	// resolve numeric indices into allele strings
	//
	// indexing ref/alt in a vcf row:
	//
	//       0       1, 2, 3, ...
	// ...  REF		ALT			...
	// ...  G		CT,CTT,CTTT

	resolveAllele := func(idx int) string {
		if idx > 0 && idx-1 < len(altAlleles) {
			return altAlleles[idx-1]
		}
		if idx == 0 {
			return ref
		}
		return ""
	}

	left := resolveAllele(alleleLeft)
	right := ""
	if ploidyValue == p.Diploid {
		right = resolveAllele(alleleRight)
	}

	return zyg, phased, left, right
}
