package models

type Config struct {
	Debug  bool   `envconfig:"PP_DEBUG"`
	SemVer string `envconfig:"PP_SEMVER" default:"0.0.1"`

	Api struct {
		Port string `envconfig:"PP_API_INTERNAL_PORT" default:"3000"`
	}
	Cache struct {
		Dir               string `envconfig:"PP_CACHE_DIR" default:"/tmp/pp-cache"`
		JanitorEnabled    bool   `envconfig:"PP_CACHE_JANITOR_ENABLED" default:"true"`
		JanitorMaxAgeDays int    `envconfig:"PP_CACHE_JANITOR_MAX_AGE_DAYS" default:"30"`
		// some hosts serve tabix .tbi indexes that must be stored
		// under a .csi extension for tabix to pick them up
		CsiQuirkHostsCommaSep string `envconfig:"PP_CACHE_CSI_QUIRK_HOSTS" default:"dl.dropboxusercontent.com"`
	}
	Tools struct {
		Tabix    string `envconfig:"PP_TABIX_BIN" default:"tabix"`
		Samtools string `envconfig:"PP_SAMTOOLS_BIN" default:"samtools"`
		Bcftools string `envconfig:"PP_BCFTOOLS_BIN" default:"bcftools"`
		Rscript  string `envconfig:"PP_RSCRIPT_BIN" default:"Rscript"`
	}
	Scripts struct {
		Survival string `envconfig:"PP_SURVIVAL_R" default:"utils/survival.R"`
		Binomial string `envconfig:"PP_BINOMIAL_R" default:"utils/binomial.R"`
	}
	Datasets struct {
		RegistryPath string `envconfig:"PP_DATASET_REGISTRY"`
	}
	Query struct {
		MaxConcurrentRegionQueries int  `envconfig:"PP_MAX_CONCURRENT_REGION_QUERIES" default:"8"`
		SubprocessTimeoutSeconds   int  `envconfig:"PP_SUBPROCESS_TIMEOUT_SECONDS" default:"0"`
		StrictParsing              bool `envconfig:"PP_STRICT_PARSING"`
	}
	Elasticsearch struct {
		Url      string `envconfig:"PP_ES_URL" default:"http://localhost:9200"`
		Username string `envconfig:"PP_ES_USERNAME"`
		Password string `envconfig:"PP_ES_PASSWORD"`
	}
}
