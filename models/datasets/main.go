package datasets

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"proteinpaint/api/models/apperror"

	"gopkg.in/yaml.v2"
)

/*
	Dataset registry: official datasets are declared in a YAML file
	mapping a `dslabel` to its genome build, track queries and cohort
	annotation. Loaded once at startup and shared read-only across
	requests.
*/

type Registry struct {
	Datasets []*Dataset `yaml:"datasets"`

	byLabel map[string]*Dataset
}

type Dataset struct {
	Label   string            `yaml:"label"`
	Genome  string            `yaml:"genome"`
	Queries map[string]*Query `yaml:"queries"`
	Cohort  *Cohort           `yaml:"cohort"`
}

type Query struct {
	Type string `yaml:"type"` // svcnv | vcf | expression | junction

	File     string `yaml:"file"`
	Url      string `yaml:"url"`
	IndexUrl string `yaml:"indexurl"`

	// co-located VCF tracks queried alongside an svcnv track
	VcfFiles []string `yaml:"vcffiles"`

	// querykey of the expression track used for ranking, if any
	ExpressionQueryKey string `yaml:"expressionquerykey"`

	// above this many basepairs the VCF portion of a combined query
	// is skipped and the limit echoed back
	VcfRangeLimit int `yaml:"vcfrangelimit"`

	// germline-style tracks drop homozygous-reference calls
	Germline bool `yaml:"germline"`

	HiddenSampleAttr   map[string][]string `yaml:"hiddensampleattr"`
	HiddenMutationAttr map[string][]string `yaml:"hiddenmutationattr"`
}

type Cohort struct {
	AnnotationFile   string             `yaml:"annotationfile"`
	GroupSampleBy    *GroupSampleByAttr `yaml:"groupsamplebyattr"`
	SurvivalTimeAttr string             `yaml:"survivaltimeattr"`
	SurvivalDeadAttr string             `yaml:"survivaldeadattr"`

	// sample name -> attribute key -> value, loaded from AnnotationFile
	Annotations map[string]map[string]string `yaml:"-"`
}

type GroupSampleByAttr struct {
	AttrLst     []*GroupAttr `yaml:"attrlst"`
	AttrNameSep string       `yaml:"attrnamesep"`
}

type GroupAttr struct {
	K     string `yaml:"k"`
	Label string `yaml:"label"`
	// optional annotation key holding the display ("full") name of a value
	Full string `yaml:"full"`
}

func LoadRegistry(registryPath string) (*Registry, error) {
	raw, err := os.ReadFile(registryPath)
	if err != nil {
		return nil, apperror.Wrap(apperror.ConfigError, fmt.Sprintf("cannot read dataset registry %s", registryPath), err)
	}

	registry := &Registry{}
	if err := yaml.Unmarshal(raw, registry); err != nil {
		return nil, apperror.Wrap(apperror.ConfigError, fmt.Sprintf("malformed dataset registry %s", registryPath), err)
	}

	registry.byLabel = make(map[string]*Dataset)
	for _, ds := range registry.Datasets {
		if ds.Label == "" {
			return nil, apperror.New(apperror.ConfigError, "dataset registry entry missing label")
		}
		if _, dup := registry.byLabel[ds.Label]; dup {
			return nil, apperror.Newf(apperror.ConfigError, "duplicate dataset label %s", ds.Label)
		}

		for key, q := range ds.Queries {
			if q.File == "" && q.Url == "" {
				return nil, apperror.Newf(apperror.ConfigError, "dataset %s query %s has neither file nor url", ds.Label, key)
			}
		}

		if ds.Cohort != nil && ds.Cohort.AnnotationFile != "" {
			annotationPath := ds.Cohort.AnnotationFile
			if !filepath.IsAbs(annotationPath) {
				annotationPath = filepath.Join(filepath.Dir(registryPath), annotationPath)
			}
			annotations, annotationErr := loadAnnotations(annotationPath)
			if annotationErr != nil {
				return nil, annotationErr
			}
			ds.Cohort.Annotations = annotations
		}

		registry.byLabel[ds.Label] = ds
	}

	return registry, nil
}

func (r *Registry) Dataset(label string) (*Dataset, error) {
	ds, ok := r.byLabel[label]
	if !ok {
		return nil, apperror.Newf(apperror.ConfigError, "unknown dslabel %s", label)
	}
	return ds, nil
}

func (r *Registry) Labels() []string {
	labels := make([]string, 0, len(r.byLabel))
	for _, ds := range r.Datasets {
		labels = append(labels, ds.Label)
	}
	return labels
}

func (d *Dataset) Query(key string) (*Query, error) {
	if d.Queries == nil {
		return nil, apperror.Newf(apperror.ConfigError, "dataset %s has no queries", d.Label)
	}
	q, ok := d.Queries[key]
	if !ok {
		return nil, apperror.Newf(apperror.ConfigError, "unknown querykey %s for dataset %s", key, d.Label)
	}
	return q, nil
}

// Annotations returns the cohort annotation table, or nil for
// datasets without one (custom tracks).
func (d *Dataset) SampleAnnotations() map[string]map[string]string {
	if d.Cohort == nil {
		return nil
	}
	return d.Cohort.Annotations
}

// SurvivalEntry extracts one sample's (time, dead) pair from the
// cohort annotation; ok is false when either column is absent.
func (d *Dataset) SurvivalEntry(sample string) (time float64, dead bool, ok bool) {
	if d.Cohort == nil || d.Cohort.SurvivalTimeAttr == "" {
		return 0, false, false
	}
	attrs, found := d.Cohort.Annotations[sample]
	if !found {
		return 0, false, false
	}
	rawTime, hasTime := attrs[d.Cohort.SurvivalTimeAttr]
	if !hasTime {
		return 0, false, false
	}
	t, timeErr := strconv.ParseFloat(rawTime, 64)
	if timeErr != nil {
		return 0, false, false
	}
	rawDead := attrs[d.Cohort.SurvivalDeadAttr]
	return t, rawDead == "1" || strings.EqualFold(rawDead, "yes") || strings.EqualFold(rawDead, "dead"), true
}

// loadAnnotations reads a headered TSV where the first column is the
// sample name and every other column is an annotation attribute.
func loadAnnotations(annotationPath string) (map[string]map[string]string, error) {
	f, err := os.Open(annotationPath)
	if err != nil {
		return nil, apperror.Wrap(apperror.ConfigError, fmt.Sprintf("cannot open cohort annotation file %s", annotationPath), err)
	}
	defer f.Close()

	annotations := make(map[string]map[string]string)

	scanner := bufio.NewScanner(f)
	var headers []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		columns := strings.Split(line, "\t")
		if headers == nil {
			headers = columns
			continue
		}

		sample := strings.TrimSpace(columns[0])
		if sample == "" {
			continue
		}
		attrs := make(map[string]string)
		for i := 1; i < len(columns) && i < len(headers); i++ {
			value := strings.TrimSpace(columns[i])
			if value != "" {
				attrs[headers[i]] = value
			}
		}
		annotations[sample] = attrs
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, apperror.Wrap(apperror.ConfigError, fmt.Sprintf("error reading cohort annotation file %s", annotationPath), scanErr)
	}

	return annotations, nil
}
