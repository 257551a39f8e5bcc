package dtos

import (
	"proteinpaint/api/models/indexes"
	"proteinpaint/api/models/records"
)

// ---- shared

// Coord backs the `gene2coord` field of the combined query response.
type Coord struct {
	Chr   string `json:"chr"`
	Start int    `json:"start"`
	Stop  int    `json:"stop"`
}

// SkippedLines reports malformed rows tolerated during parsing,
// keyed by failure kind (badjson, badcoordinate, unknowndt, badvcf).
type SkippedLines map[string]int

// ---- combined svcnv/vcf query

type SvcnvRequest struct {
	Genome   string `json:"genome"`
	DsLabel  string `json:"dslabel"`
	QueryKey string `json:"querykey"`

	// custom track: caller supplies the file/url directly
	IsCustom bool   `json:"iscustom,omitempty"`
	File     string `json:"file,omitempty"`
	Url      string `json:"url,omitempty"`
	IndexUrl string `json:"indexurl,omitempty"`

	Rglst []records.GenomicRegion `json:"rglst"`

	ValueCutoff        float64 `json:"valueCutoff,omitempty"`
	BplengthUpperLimit int     `json:"bplengthUpperLimit,omitempty"`
	FocalSizeLimit     int     `json:"focalsizelimit,omitempty"`

	HiddenMutationAttr map[string][]string `json:"hiddenmattr,omitempty"`
	HiddenSampleAttr   map[string][]string `json:"hiddensampleattr,omitempty"`

	SingleSample string `json:"singlesample,omitempty"`

	// known-incomplete: marks CNVs lacking in-window SV support, see
	// services/filtering
	ShowOnlyCnvWithSv bool `json:"showonlycnvwithsv,omitempty"`

	// gene symbols to resolve into gene2coord
	Genes []string `json:"genes,omitempty"`

	// rank samples by this gene's expression when the dataset has an
	// expression track
	ExpressionRankGene string `json:"getexpressionrank,omitempty"`
}

type SvcnvResponse struct {
	SampleGroups []*records.SampleGroup `json:"samplegroups"`
	DataVcf      []*records.SnvIndel    `json:"data_vcf,omitempty"`

	VcfRangeLimit    int                          `json:"vcfrangelimit,omitempty"`
	Gene2Coord       map[string]Coord             `json:"gene2coord,omitempty"`
	SampleAnnotation map[string]map[string]string `json:"sampleannotation,omitempty"`
	SkippedLines     SkippedLines                 `json:"skippedLines,omitempty"`
}

// ---- junction query

type JunctionRequest struct {
	Genome   string `json:"genome"`
	DsLabel  string `json:"dslabel"`
	QueryKey string `json:"querykey"`

	IsCustom bool   `json:"iscustom,omitempty"`
	File     string `json:"file,omitempty"`
	Url      string `json:"url,omitempty"`
	IndexUrl string `json:"indexurl,omitempty"`

	Rglst []records.GenomicRegion `json:"rglst"`

	ReadCountCutoff int      `json:"readcountCutoff,omitempty"`
	HiddenTypes     []string `json:"hiddentypes,omitempty"`
}

type Junction struct {
	Chr   string `json:"chr"`
	Start int    `json:"start"`
	Stop  int    `json:"stop"`
	Type  string `json:"type"`

	SampleCount     int      `json:"samplecount"`
	MedianReadCount float64  `json:"medianreadcount"`
	ReadCounts      *Boxplot `json:"readcountboxplot,omitempty"`
}

type JunctionResponse struct {
	Junctions    []*Junction  `json:"junctions"`
	SampleCount  int          `json:"samplecount"`
	SkippedLines SkippedLines `json:"skippedLines,omitempty"`
}

// ---- expression boxplots

type ExpressionRequest struct {
	Genome   string `json:"genome"`
	DsLabel  string `json:"dslabel"`
	QueryKey string `json:"querykey"`

	Gene   string                `json:"gene"`
	Region records.GenomicRegion `json:"region"`
}

type Boxplot struct {
	W1  float64   `json:"w1"`
	W2  float64   `json:"w2"`
	P25 float64   `json:"p25"`
	P50 float64   `json:"p50"`
	P75 float64   `json:"p75"`
	Out []float64 `json:"out"`

	SampleCount int `json:"samplecount"`
}

type ExpressionGroup struct {
	Name       string                   `json:"name"`
	Attributes []records.GroupAttribute `json:"attributes,omitempty"`
	Boxplots   []*Boxplot               `json:"boxplots"`
}

type ExpressionResponse struct {
	Groups []*ExpressionGroup `json:"groups"`
	Min    float64            `json:"min"`
	Max    float64            `json:"max"`

	SkippedLines SkippedLines `json:"skippedLines,omitempty"`
}

// ---- survival

type SurvivalEntryDto struct {
	Time     float64 `json:"time"`
	Censored int     `json:"censored"`
}

type SampleSetDto struct {
	Name    string             `json:"name"`
	Entries []SurvivalEntryDto `json:"entries"`
}

type SurvivalRequest struct {
	Genome  string `json:"genome"`
	DsLabel string `json:"dslabel"`

	// either pre-built sample sets...
	SampleSets []SampleSetDto `json:"samplesets,omitempty"`

	// ...or an expression dichotomization over the cohort
	QueryKey string                `json:"querykey,omitempty"`
	Gene     string                `json:"gene,omitempty"`
	Region   records.GenomicRegion `json:"region,omitempty"`
	// "median" or "quartile"
	Split string `json:"split,omitempty"`
}

type SurvivalStep struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Drop     float64 `json:"drop"`
	Censored int     `json:"censored"`
}

type SurvivalSet struct {
	Name  string         `json:"name"`
	Steps []SurvivalStep `json:"steps"`
}

type SurvivalResponse struct {
	SampleSets []*SurvivalSet `json:"samplesets"`
	PValue     *float64       `json:"pvalue,omitempty"`
	Cutoffs    []float64      `json:"cutoffs,omitempty"`
	PValueErr  string         `json:"pvalueerror,omitempty"`
}

// ---- allele-specific expression

type AseRequest struct {
	Genome  string `json:"genome"`
	DsLabel string `json:"dslabel"`

	Gene   string `json:"gene"`
	Sample string `json:"samplename"`

	Chr   string `json:"chr"`
	Start int    `json:"start"`
	Stop  int    `json:"stop"`

	VcfFile    string `json:"vcffile"`
	RnaBamFile string `json:"rnabamfile"`
	FastaFile  string `json:"fastafile"`

	MinCoverage int `json:"mincoverage,omitempty"`
}

type AseMarker struct {
	Chr      string  `json:"chr"`
	Pos      int     `json:"pos"`
	Ref      string  `json:"ref"`
	Alt      string  `json:"alt"`
	RefCount int     `json:"refcount"`
	AltCount int     `json:"altcount"`
	PValue   float64 `json:"pvalue"`
}

type AseResponse struct {
	Gene   string `json:"gene"`
	Sample string `json:"samplename"`

	Markers []*AseMarker `json:"markers"`
	// markers with p < 0.05 out of all tested
	ImbalancedCount int `json:"imbalancedcount"`
	TestedCount     int `json:"testedcount"`

	SkippedLines SkippedLines `json:"skippedLines,omitempty"`
}

// ---- gene lookup

type GenesResponseDTO struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Term    string         `json:"term"`
	Count   int            `json:"count"`
	Results []indexes.Gene `json:"results"` // []Gene
}

// ---- cache visibility

type CacheStatsResponse struct {
	Entries    int   `json:"entries"`
	TotalBytes int64 `json:"totalBytes"`
}

// ---- dataset overview

type DatasetOverviewResponse struct {
	Label     string   `json:"label"`
	Genome    string   `json:"genome"`
	QueryKeys []string `json:"querykeys"`
	HasCohort bool     `json:"hascohort"`
}
