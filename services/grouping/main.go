package grouping

import (
	"sort"
	"strings"

	"proteinpaint/api/models/datasets"
	"proteinpaint/api/models/records"
)

const UnannotatedGroupName = "Unannotated"
const DefaultAttrNameSep = ", "

// Group buckets per-sample record lists into cohort-defined groups by
// concatenating annotation values for the configured attributes in
// priority order. Samples missing the first-priority attribute land in
// the "Unannotated" catch-all. With a nil config everything goes into
// a single flat group (custom/unannotated tracks).
//
// Every input sample appears in exactly one output group; groups and
// their sample lists are sorted by name for stable output.
func Group(samplesToItems map[string][]records.MutationRecord,
	annotations map[string]map[string]string,
	cfg *datasets.GroupSampleByAttr) []*records.SampleGroup {

	if len(samplesToItems) == 0 {
		return []*records.SampleGroup{}
	}

	if cfg == nil || len(cfg.AttrLst) == 0 {
		flat := &records.SampleGroup{Name: ""}
		for sample, items := range samplesToItems {
			flat.Samples = append(flat.Samples, newSampleEntry(sample, items, annotations))
		}
		sortGroupSamples(flat)
		return []*records.SampleGroup{flat}
	}

	separator := cfg.AttrNameSep
	if separator == "" {
		separator = DefaultAttrNameSep
	}

	groupsByKey := make(map[string]*records.SampleGroup)

	for sample, items := range samplesToItems {
		attrs := annotations[sample]

		_, hasFirst := lookupAttr(attrs, cfg.AttrLst[0].K)
		if attrs == nil || !hasFirst {
			unannotated, exists := groupsByKey[UnannotatedGroupName]
			if !exists {
				unannotated = &records.SampleGroup{Name: UnannotatedGroupName}
				groupsByKey[UnannotatedGroupName] = unannotated
			}
			unannotated.Samples = append(unannotated.Samples, newSampleEntry(sample, items, annotations))
			continue
		}

		// composite key from values in priority order, stopping at
		// the first missing attribute
		var nameParts []string
		var groupAttributes []records.GroupAttribute
		for _, attr := range cfg.AttrLst {
			value, hasValue := lookupAttr(attrs, attr.K)
			if !hasValue {
				break
			}
			nameParts = append(nameParts, value)
			groupAttribute := records.GroupAttribute{K: attr.K, KValue: value}
			if attr.Full != "" {
				if fullValue, hasFull := lookupAttr(attrs, attr.Full); hasFull {
					groupAttribute.FullLabel = fullValue
				}
			}
			groupAttributes = append(groupAttributes, groupAttribute)
		}

		key := strings.Join(nameParts, separator)
		group, exists := groupsByKey[key]
		if !exists {
			group = &records.SampleGroup{
				Name:       key,
				Attributes: groupAttributes,
			}
			groupsByKey[key] = group
		}
		group.Samples = append(group.Samples, newSampleEntry(sample, items, annotations))
	}

	groups := make([]*records.SampleGroup, 0, len(groupsByKey))
	for _, group := range groupsByKey {
		sortGroupSamples(group)
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		// catch-all group sinks to the end
		if groups[i].Name == UnannotatedGroupName {
			return false
		}
		if groups[j].Name == UnannotatedGroupName {
			return true
		}
		return groups[i].Name < groups[j].Name
	})

	return groups
}

func lookupAttr(attrs map[string]string, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	value, ok := attrs[key]
	return value, ok
}

func newSampleEntry(sample string, items []records.MutationRecord, annotations map[string]map[string]string) *records.SampleEntry {
	entry := &records.SampleEntry{
		SampleName: sample,
		Items:      items,
	}
	if attrs, annotated := annotations[sample]; annotated {
		entry.Attributes = attrs
	}
	return entry
}

func sortGroupSamples(group *records.SampleGroup) {
	sort.Slice(group.Samples, func(i, j int) bool {
		return group.Samples[i].SampleName < group.Samples[j].SampleName
	})
}

// ReclassifyCopyNeutralLoh drops LOH records that genomically overlap
// a CNV record of the same sample on the same chromosome: the copy
// change already implies allelic loss there. LOH without overlapping
// CNV is the copy-neutral signal worth surfacing. Pure function over
// one sample's records.
func ReclassifyCopyNeutralLoh(items []records.MutationRecord) []records.MutationRecord {
	cnvsByChr := make(map[string][]*records.Cnv)
	for _, item := range items {
		if cnv, isCnv := item.(*records.Cnv); isCnv {
			cnvsByChr[cnv.Chr] = append(cnvsByChr[cnv.Chr], cnv)
		}
	}

	if len(cnvsByChr) == 0 {
		// no CNV at all: all LOH passes through
		return items
	}

	var kept []records.MutationRecord
	for _, item := range items {
		loh, isLoh := item.(*records.Loh)
		if !isLoh {
			kept = append(kept, item)
			continue
		}

		overlapped := false
		for _, cnv := range cnvsByChr[loh.Chr] {
			if max(loh.Start, cnv.Start) < min(loh.Stop, cnv.Stop) {
				overlapped = true
				break
			}
		}
		if !overlapped {
			kept = append(kept, loh)
		}
	}
	return kept
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
