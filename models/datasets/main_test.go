package datasets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const registryYaml = `
datasets:
  - label: pediatric
    genome: hg19
    queries:
      svcnv:
        type: svcnv
        file: /data/pediatric.svcnv.gz
        vcffiles:
          - /data/pediatric.vcf.gz
        vcfrangelimit: 1000000
        expressionquerykey: fpkm
      fpkm:
        type: expression
        file: /data/pediatric.fpkm.gz
    cohort:
      annotationfile: annotations.tsv
      survivaltimeattr: futime
      survivaldeadattr: fustat
      groupsamplebyattr:
        attrlst:
          - k: diagnosis
`

const annotationTsv = "sample\tdiagnosis\tfutime\tfustat\n" +
	"s1\tAML\t120.5\t1\n" +
	"s2\tALL\t88\t0\n"

func writeRegistry(t *testing.T) string {
	dir := t.TempDir()

	registryPath := filepath.Join(dir, "registry.yaml")
	assert.Nil(t, os.WriteFile(registryPath, []byte(registryYaml), 0644))
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "annotations.tsv"), []byte(annotationTsv), 0644))

	return registryPath
}

func TestLoadRegistry(t *testing.T) {
	registry, err := LoadRegistry(writeRegistry(t))
	assert.Nil(t, err)

	ds, dsErr := registry.Dataset("pediatric")
	assert.Nil(t, dsErr)
	assert.Equal(t, "hg19", ds.Genome)

	q, qErr := ds.Query("svcnv")
	assert.Nil(t, qErr)
	assert.Equal(t, "/data/pediatric.svcnv.gz", q.File)
	assert.Equal(t, []string{"/data/pediatric.vcf.gz"}, q.VcfFiles)
	assert.Equal(t, 1000000, q.VcfRangeLimit)
	assert.Equal(t, "fpkm", q.ExpressionQueryKey)
}

func TestLoadRegistryLoadsAnnotations(t *testing.T) {
	registry, err := LoadRegistry(writeRegistry(t))
	assert.Nil(t, err)

	ds, _ := registry.Dataset("pediatric")
	annotations := ds.SampleAnnotations()
	assert.Equal(t, "AML", annotations["s1"]["diagnosis"])
	assert.Equal(t, "ALL", annotations["s2"]["diagnosis"])
}

func TestSurvivalEntryFromAnnotations(t *testing.T) {
	registry, err := LoadRegistry(writeRegistry(t))
	assert.Nil(t, err)

	ds, _ := registry.Dataset("pediatric")

	followupTime, dead, ok := ds.SurvivalEntry("s1")
	assert.True(t, ok)
	assert.True(t, dead)
	assert.Equal(t, 120.5, followupTime)

	_, alive, ok := ds.SurvivalEntry("s2")
	assert.True(t, ok)
	assert.False(t, alive)

	_, _, ok = ds.SurvivalEntry("nobody")
	assert.False(t, ok)
}

func TestUnknownDatasetLabelFails(t *testing.T) {
	registry, err := LoadRegistry(writeRegistry(t))
	assert.Nil(t, err)

	_, dsErr := registry.Dataset("nope")
	assert.NotNil(t, dsErr)
}

func TestRegistryRejectsQueryWithoutSource(t *testing.T) {
	dir := t.TempDir()
	registryPath := filepath.Join(dir, "registry.yaml")
	assert.Nil(t, os.WriteFile(registryPath, []byte(`
datasets:
  - label: broken
    genome: hg19
    queries:
      svcnv:
        type: svcnv
`), 0644))

	_, err := LoadRegistry(registryPath)
	assert.NotNil(t, err)
}
