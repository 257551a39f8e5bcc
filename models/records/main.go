package records

import (
	"fmt"

	"proteinpaint/api/models/constants"
	"proteinpaint/api/models/constants/datatype"
)

type GenomicRegion struct {
	Chr     string `json:"chr"`
	Start   int    `json:"start"`
	Stop    int    `json:"stop"`
	Width   int    `json:"width,omitempty"`
	Reverse bool   `json:"reverse,omitempty"`
}

func (r GenomicRegion) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chr, r.Start, r.Stop)
}

// MutationRecord is the closed union over all mutation event shapes
// decoded from svcnv/vcf track rows. Consumers dispatch with a type
// switch over the concrete variants; there is no "unknown dt" variant,
// unrecognized tags are rejected at parse time.
type MutationRecord interface {
	DataType() constants.DataType

	// SampleName returns the single owning sample, or "" for
	// SnvIndel records which carry a per-sample list instead.
	SampleName() string
}

type Cnv struct {
	Dt     constants.DataType `json:"dt"`
	Chr    string             `json:"chr"`
	Start  int                `json:"start"`
	Stop   int                `json:"stop"`
	Sample string             `json:"sample"`
	// signed log2 ratio; sign encodes gain vs loss
	Value float64           `json:"value"`
	Attr  map[string]string `json:"mattr,omitempty"`
}

type Loh struct {
	Dt      constants.DataType `json:"dt"`
	Chr     string             `json:"chr"`
	Start   int                `json:"start"`
	Stop    int                `json:"stop"`
	Sample  string             `json:"sample"`
	Segmean float64            `json:"segmean"`
	Attr    map[string]string  `json:"mattr,omitempty"`
}

// Sv is a breakend pair; one endpoint is local to the queried
// chromosome, the mate may be anywhere in the genome.
type Sv struct {
	Dt     constants.DataType `json:"dt"`
	ChrA   string             `json:"chrA"`
	PosA   int                `json:"posA"`
	ChrB   string             `json:"chrB"`
	PosB   int                `json:"posB"`
	Sample string             `json:"sample"`
	Attr   map[string]string  `json:"mattr,omitempty"`
}

// Fusion has the same breakend-pair shape as Sv with a distinct tag
// (RNA-level evidence rather than DNA).
type Fusion struct {
	Dt     constants.DataType `json:"dt"`
	ChrA   string             `json:"chrA"`
	PosA   int                `json:"posA"`
	ChrB   string             `json:"chrB"`
	PosB   int                `json:"posB"`
	Sample string             `json:"sample"`
	Attr   map[string]string  `json:"mattr,omitempty"`
}

type Itd struct {
	Dt     constants.DataType `json:"dt"`
	Chr    string             `json:"chr"`
	Start  int                `json:"start"`
	Stop   int                `json:"stop"`
	Sample string             `json:"sample"`
	Attr   map[string]string  `json:"mattr,omitempty"`
}

// SnvIndel is a locus-level record decoded from a VCF row; it may carry
// many samples, each filtered independently of the locus.
type SnvIndel struct {
	Dt         constants.DataType `json:"dt"`
	Chr        string             `json:"chr"`
	Pos        int                `json:"pos"`
	Ref        string             `json:"ref"`
	Alt        string             `json:"alt"`
	Name       string             `json:"name,omitempty"`
	SampleData []SampleAllele     `json:"sampledata"`
}

// SampleAllele is one sample's genotype entry on an SnvIndel record.
type SampleAllele struct {
	Sample       string `json:"sampleobj"`
	GenotypeType string `json:"genotype"`
	AlleleLeft   string `json:"allele1,omitempty"`
	AlleleRight  string `json:"allele2,omitempty"`
	Phased       bool   `json:"phased,omitempty"`
}

func (m *Cnv) DataType() constants.DataType      { return datatype.Cnv }
func (m *Loh) DataType() constants.DataType      { return datatype.Loh }
func (m *Sv) DataType() constants.DataType       { return datatype.Sv }
func (m *Fusion) DataType() constants.DataType   { return datatype.FusionRna }
func (m *Itd) DataType() constants.DataType      { return datatype.Itd }
func (m *SnvIndel) DataType() constants.DataType { return datatype.SnvIndel }

func (m *Cnv) SampleName() string    { return m.Sample }
func (m *Loh) SampleName() string    { return m.Sample }
func (m *Sv) SampleName() string     { return m.Sample }
func (m *Fusion) SampleName() string { return m.Sample }
func (m *Itd) SampleName() string    { return m.Sample }

// SnvIndel carries a sample list, not a single owner
func (m *SnvIndel) SampleName() string { return "" }

// MutationAttr exposes the optional mutation-level attribute map used
// by the hidden-mutation-attribute filter; SnvIndel has none.
func MutationAttr(m MutationRecord) map[string]string {
	switch v := m.(type) {
	case *Cnv:
		return v.Attr
	case *Loh:
		return v.Attr
	case *Sv:
		return v.Attr
	case *Fusion:
		return v.Attr
	case *Itd:
		return v.Attr
	case *SnvIndel:
		return nil
	}
	return nil
}

// SampleEntry accumulates one sample's surviving records for a single
// request; it is never persisted across requests.
type SampleEntry struct {
	SampleName      string            `json:"samplename"`
	Items           []MutationRecord  `json:"items"`
	ExpressionValue *float64          `json:"expressionValue,omitempty"`
	ExpressionRank  *int              `json:"expressionRank,omitempty"`
	Attributes      map[string]string `json:"sampleannotation,omitempty"`
}

type GroupAttribute struct {
	K         string `json:"k"`
	KValue    string `json:"kvalue"`
	FullLabel string `json:"full,omitempty"`
}

type SampleGroup struct {
	Name       string           `json:"name"`
	Attributes []GroupAttribute `json:"attributes,omitempty"`
	Samples    []*SampleEntry   `json:"samples"`
}
