package filtering

import (
	"testing"

	"proteinpaint/api/models/constants/datatype"
	"proteinpaint/api/models/records"

	"github.com/stretchr/testify/assert"
)

func TestValueCutoffComparesAbsoluteValue(t *testing.T) {
	items := []records.MutationRecord{
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "s1", Value: 0.5},
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "s2", Value: -0.4},
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "s3", Value: 0.1},
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "s4", Value: -0.05},
	}

	kept := Apply(items, Spec{ValueCutoff: 0.2}, nil)

	assert.Len(t, kept, 2)
	assert.Equal(t, "s1", kept[0].SampleName())
	assert.Equal(t, "s2", kept[1].SampleName())
}

func TestBplengthUpperLimitDropsWideSegments(t *testing.T) {
	items := []records.MutationRecord{
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 500, Sample: "s1", Value: 1},
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 2000000, Sample: "s2", Value: 1},
		&records.Itd{Dt: datatype.Itd, Chr: "chr1", Start: 0, Stop: 2000000, Sample: "s3"},
		// breakend records have no span, the limit never applies
		&records.Sv{Dt: datatype.Sv, ChrA: "chr1", PosA: 5, ChrB: "chr9", PosB: 10, Sample: "s4"},
	}

	kept := Apply(items, Spec{BplengthUpperLimit: 1000000}, nil)

	assert.Len(t, kept, 2)
	assert.Equal(t, "s1", kept[0].SampleName())
	assert.Equal(t, "s4", kept[1].SampleName())
}

func TestHiddenSampleAttrDropsAnnotatedMatches(t *testing.T) {
	items := []records.MutationRecord{
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "s1", Value: 1},
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "s2", Value: 1},
	}
	annotations := map[string]map[string]string{
		"s1": {"diagnosis": "AML"},
		"s2": {"diagnosis": "ALL"},
	}

	kept := Apply(items, Spec{HiddenSampleAttr: map[string][]string{"diagnosis": {"AML"}}}, annotations)

	assert.Len(t, kept, 1)
	assert.Equal(t, "s2", kept[0].SampleName())
}

func TestHiddenSampleAttrCanHideUnannotated(t *testing.T) {
	items := []records.MutationRecord{
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "mystery", Value: 1},
	}

	kept := Apply(items, Spec{HiddenSampleAttr: map[string][]string{"diagnosis": {UnannotatedValue}}}, nil)

	assert.Empty(t, kept)
}

func TestSingleSampleReducesSnvIndelSampleList(t *testing.T) {
	items := []records.MutationRecord{
		&records.SnvIndel{
			Dt: datatype.SnvIndel, Chr: "chr1", Pos: 100, Ref: "A", Alt: "T",
			SampleData: []records.SampleAllele{
				{Sample: "s1", GenotypeType: "HETEROZYGOUS"},
				{Sample: "s2", GenotypeType: "HOMOZYGOUS_ALTERNATE"},
			},
		},
	}

	kept := Apply(items, Spec{SingleSample: "s2"}, nil)

	assert.Len(t, kept, 1)
	snvIndel := kept[0].(*records.SnvIndel)
	assert.Len(t, snvIndel.SampleData, 1)
	assert.Equal(t, "s2", snvIndel.SampleData[0].Sample)
}

func TestSnvIndelWithNoSurvivingSamplesIsDropped(t *testing.T) {
	items := []records.MutationRecord{
		&records.SnvIndel{
			Dt: datatype.SnvIndel, Chr: "chr1", Pos: 100, Ref: "A", Alt: "T",
			SampleData: []records.SampleAllele{
				{Sample: "s1", GenotypeType: "HETEROZYGOUS"},
			},
		},
	}

	kept := Apply(items, Spec{SingleSample: "other"}, nil)

	assert.Empty(t, kept)
}

func TestHiddenMutationAttrDropsTaggedRecords(t *testing.T) {
	items := []records.MutationRecord{
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "s1", Value: 1,
			Attr: map[string]string{"origin": "germline"}},
		&records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 0, Stop: 10, Sample: "s2", Value: 1,
			Attr: map[string]string{"origin": "somatic"}},
	}

	kept := Apply(items, Spec{HiddenMutationAttr: map[string][]string{"origin": {"germline"}}}, nil)

	assert.Len(t, kept, 1)
	assert.Equal(t, "s2", kept[0].SampleName())
}

func TestMarkCnvWithSvSupport(t *testing.T) {
	supportedCnv := &records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 100, Stop: 200, Sample: "s1", Value: 1}
	unsupportedCnv := &records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 500, Stop: 600, Sample: "s1", Value: 1}
	otherSampleCnv := &records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 100, Stop: 200, Sample: "s2", Value: 1}

	items := []records.MutationRecord{
		supportedCnv,
		unsupportedCnv,
		otherSampleCnv,
		&records.Sv{Dt: datatype.Sv, ChrA: "chr1", PosA: 150, ChrB: "chr9", PosB: 999, Sample: "s1"},
	}

	supported := MarkCnvWithSvSupport(items)

	assert.True(t, supported[supportedCnv])
	assert.False(t, supported[unsupportedCnv])
	assert.False(t, supported[otherSampleCnv])
}
