package filtering

import (
	"math"

	"proteinpaint/api/models/records"
	"proteinpaint/api/utils"
)

// label given to samples without cohort annotation when deciding
// hidden-attribute filters
const UnannotatedValue = "Unannotated"

// Spec is the conjunction of server-side record filters for one
// request. Zero values disable the corresponding filter.
type Spec struct {
	// drop CNV/LOH records whose absolute value is below this
	ValueCutoff float64

	// drop CNV/LOH/ITD records spanning more basepairs than this
	// (guards against non-focal calls)
	BplengthUpperLimit int

	// sample annotation key -> set of hidden values; a record is
	// dropped when its sample's annotation matches, or when the
	// sample is unannotated and "Unannotated" is itself hidden
	HiddenSampleAttr map[string][]string

	// same logic keyed on mutation-level attributes
	HiddenMutationAttr map[string][]string

	// restrict to exactly one sample
	SingleSample string
}

// Apply runs every configured filter over the records; filters are
// pure predicates, so ordering does not affect the result. SnvIndel
// records survive with a reduced sample list as long as it stays
// non-empty; every other record type is kept or dropped whole.
func Apply(items []records.MutationRecord, spec Spec, annotations map[string]map[string]string) []records.MutationRecord {
	var kept []records.MutationRecord

	for _, item := range items {
		switch record := item.(type) {
		case *records.SnvIndel:
			if filtered := filterSnvIndel(record, spec, annotations); filtered != nil {
				kept = append(kept, filtered)
			}
		default:
			if keepRecord(item, spec, annotations) {
				kept = append(kept, item)
			}
		}
	}

	return kept
}

func keepRecord(item records.MutationRecord, spec Spec, annotations map[string]map[string]string) bool {
	switch record := item.(type) {
	case *records.Cnv:
		if spec.ValueCutoff > 0 && math.Abs(record.Value) < spec.ValueCutoff {
			return false
		}
		if spec.BplengthUpperLimit > 0 && record.Stop-record.Start > spec.BplengthUpperLimit {
			return false
		}
	case *records.Loh:
		if spec.ValueCutoff > 0 && math.Abs(record.Segmean) < spec.ValueCutoff {
			return false
		}
		if spec.BplengthUpperLimit > 0 && record.Stop-record.Start > spec.BplengthUpperLimit {
			return false
		}
	case *records.Itd:
		if spec.BplengthUpperLimit > 0 && record.Stop-record.Start > spec.BplengthUpperLimit {
			return false
		}
	}

	sample := item.SampleName()

	if spec.SingleSample != "" && sample != spec.SingleSample {
		return false
	}

	if sampleIsHidden(sample, spec.HiddenSampleAttr, annotations) {
		return false
	}

	if mutationIsHidden(item, spec.HiddenMutationAttr) {
		return false
	}

	return true
}

// filterSnvIndel filters the per-sample list independently of the
// locus-level record; nil means the whole record is dropped.
func filterSnvIndel(record *records.SnvIndel, spec Spec, annotations map[string]map[string]string) *records.SnvIndel {
	var surviving []records.SampleAllele
	for _, sampleAllele := range record.SampleData {
		if spec.SingleSample != "" && sampleAllele.Sample != spec.SingleSample {
			continue
		}
		if sampleIsHidden(sampleAllele.Sample, spec.HiddenSampleAttr, annotations) {
			continue
		}
		surviving = append(surviving, sampleAllele)
	}

	if len(surviving) == 0 {
		return nil
	}
	if len(surviving) == len(record.SampleData) {
		return record
	}

	reduced := *record
	reduced.SampleData = surviving
	return &reduced
}

func sampleIsHidden(sample string, hiddenSampleAttr map[string][]string, annotations map[string]map[string]string) bool {
	if len(hiddenSampleAttr) == 0 {
		return false
	}

	attrs := annotations[sample]
	for key, hiddenValues := range hiddenSampleAttr {
		value, annotated := "", false
		if attrs != nil {
			value, annotated = attrs[key]
		}
		if !annotated {
			// unannotated samples are droppable too, when configured
			if utils.StringInSlice(UnannotatedValue, hiddenValues) {
				return true
			}
			continue
		}
		if utils.StringInSlice(value, hiddenValues) {
			return true
		}
	}
	return false
}

func mutationIsHidden(item records.MutationRecord, hiddenMutationAttr map[string][]string) bool {
	if len(hiddenMutationAttr) == 0 {
		return false
	}

	attrs := records.MutationAttr(item)
	for key, hiddenValues := range hiddenMutationAttr {
		value, present := "", false
		if attrs != nil {
			value, present = attrs[key]
		}
		if !present {
			if utils.StringInSlice(UnannotatedValue, hiddenValues) {
				return true
			}
			continue
		}
		if utils.StringInSlice(value, hiddenValues) {
			return true
		}
	}
	return false
}

// MarkCnvWithSvSupport annotates CNV records that have an SV breakend
// from the same sample within the queried window.
//
// Known-incomplete: an SV whose breakpoints both lie outside the
// queried range cannot be seen here, so a supported CNV may still be
// reported as unsupported. Callers must treat the marker as a hint,
// never as grounds to drop records.
func MarkCnvWithSvSupport(items []records.MutationRecord) map[*records.Cnv]bool {
	type breakend struct {
		chr string
		pos int
	}
	svBySample := make(map[string][]breakend)

	for _, item := range items {
		switch record := item.(type) {
		case *records.Sv:
			svBySample[record.Sample] = append(svBySample[record.Sample],
				breakend{record.ChrA, record.PosA}, breakend{record.ChrB, record.PosB})
		case *records.Fusion:
			svBySample[record.Sample] = append(svBySample[record.Sample],
				breakend{record.ChrA, record.PosA}, breakend{record.ChrB, record.PosB})
		}
	}

	supported := make(map[*records.Cnv]bool)
	for _, item := range items {
		cnv, isCnv := item.(*records.Cnv)
		if !isCnv {
			continue
		}
		for _, end := range svBySample[cnv.Sample] {
			if end.chr == cnv.Chr && end.pos >= cnv.Start && end.pos <= cnv.Stop {
				supported[cnv] = true
				break
			}
		}
	}
	return supported
}
