package svcnv

import (
	"testing"

	"proteinpaint/api/models/constants/datatype"
	"proteinpaint/api/models/datasets"
	"proteinpaint/api/models/dtos"
	"proteinpaint/api/models/records"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilterSpecMergesRequestAndDataset(t *testing.T) {
	q := &datasets.Query{
		HiddenSampleAttr: map[string][]string{"diagnosis": {"AML"}},
	}
	req := &dtos.SvcnvRequest{
		ValueCutoff:        0.2,
		BplengthUpperLimit: 2000000,
	}

	spec := buildFilterSpec(q, req)

	assert.Equal(t, 0.2, spec.ValueCutoff)
	assert.Equal(t, 2000000, spec.BplengthUpperLimit)
	// dataset defaults apply when the request is silent
	assert.Equal(t, q.HiddenSampleAttr, spec.HiddenSampleAttr)
}

func TestBuildFilterSpecRequestHiddenAttrsWin(t *testing.T) {
	q := &datasets.Query{
		HiddenSampleAttr: map[string][]string{"diagnosis": {"AML"}},
	}
	req := &dtos.SvcnvRequest{
		HiddenSampleAttr: map[string][]string{"diagnosis": {"ALL"}},
	}

	spec := buildFilterSpec(q, req)

	assert.Equal(t, req.HiddenSampleAttr, spec.HiddenSampleAttr)
}

func TestBuildFilterSpecFocalSizeTightensSpanLimit(t *testing.T) {
	req := &dtos.SvcnvRequest{
		BplengthUpperLimit: 2000000,
		FocalSizeLimit:     500000,
	}

	spec := buildFilterSpec(&datasets.Query{}, req)

	assert.Equal(t, 500000, spec.BplengthUpperLimit)
}

func TestMarkCnvSvSupportAnnotatesWithoutDropping(t *testing.T) {
	supported := &records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 100, Stop: 200, Sample: "s1", Value: 1}
	unsupported := &records.Cnv{Dt: datatype.Cnv, Chr: "chr1", Start: 900, Stop: 950, Sample: "s1", Value: 1}

	items := []records.MutationRecord{
		supported,
		unsupported,
		&records.Sv{Dt: datatype.Sv, ChrA: "chr1", PosA: 150, ChrB: "chr9", PosB: 1, Sample: "s1"},
	}

	markCnvSvSupport(items)

	assert.Len(t, items, 3)
	assert.Equal(t, "yes", supported.Attr["svsupport"])
	assert.Equal(t, "no", unsupported.Attr["svsupport"])
}
