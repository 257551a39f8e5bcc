package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"proteinpaint/api/contexts"
	ppm "proteinpaint/api/middleware"
	"proteinpaint/api/models"
	serviceInfoConst "proteinpaint/api/models/constants/service-info"
	"proteinpaint/api/models/datasets"
	aseMvc "proteinpaint/api/mvc/ase"
	cacheMvc "proteinpaint/api/mvc/cache"
	datasetsMvc "proteinpaint/api/mvc/datasets"
	expressionMvc "proteinpaint/api/mvc/expression"
	genesMvc "proteinpaint/api/mvc/genes"
	junctionMvc "proteinpaint/api/mvc/junction"
	serviceInfoMvc "proteinpaint/api/mvc/service-info"
	survivalMvc "proteinpaint/api/mvc/survival"
	svcnvMvc "proteinpaint/api/mvc/svcnv"
	"proteinpaint/api/repositories/tabix"
	"proteinpaint/api/services/ase"
	"proteinpaint/api/services/expression"
	"proteinpaint/api/services/indexcache"
	"proteinpaint/api/services/junction"
	"proteinpaint/api/services/parsing"
	"proteinpaint/api/services/stats"
	"proteinpaint/api/services/svcnv"
	"proteinpaint/api/utils"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tCache Directory : %s \n"+
		"\tCache Janitor Enabled : %t\n"+
		"\tCache Janitor Max Age (days) : %d\n\n"+

		"\tTabix Binary : %s \n"+
		"\tSamtools Binary : %s \n"+
		"\tBcftools Binary : %s \n"+
		"\tRscript Binary : %s \n\n"+

		"\tDataset Registry : %s \n"+
		"\tMax Concurrent Region Queries : %d\n"+
		"\tSubprocess Timeout (seconds) : %d\n"+
		"\tStrict Parsing : %t\n\n"+

		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Cache.Dir,
		cfg.Cache.JanitorEnabled,
		cfg.Cache.JanitorMaxAgeDays,
		cfg.Tools.Tabix, cfg.Tools.Samtools, cfg.Tools.Bcftools, cfg.Tools.Rscript,
		cfg.Datasets.RegistryPath,
		cfg.Query.MaxConcurrentRegionQueries,
		cfg.Query.SubprocessTimeoutSeconds,
		cfg.Query.StrictParsing,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.Api.Port)
	// --

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch (gene coordinate lookups)
	es := utils.CreateEsConnection(&cfg)

	// Dataset registry (optional; custom tracks work without one)
	var registry *datasets.Registry
	if cfg.Datasets.RegistryPath != "" {
		registry, err = datasets.LoadRegistry(cfg.Datasets.RegistryPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		fmt.Printf("Loaded dataset registry with %d dataset(s)\n", len(registry.Labels()))
	}

	// Service Singletons
	executor := tabix.NewExecutor(&cfg)
	cacheService := indexcache.NewCacheService(&cfg)
	parser := parsing.NewParser(&cfg)
	expressionService := expression.NewExpressionService(executor, parser, &cfg)
	statsService := stats.NewStatsService(executor, &cfg)
	svcnvService := svcnv.NewSvcnvService(executor, cacheService, parser, expressionService, &cfg)
	junctionService := junction.NewJunctionService(executor, cacheService, parser, &cfg)
	aseService := ase.NewAseService(executor, parser, statsService, &cfg)

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))

	// -- Override handlers with "custom ProteinPaint" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.PpContext{
				Context:   c,
				Es7Client: es,
				Config:    &cfg,
				Registry:  registry,

				CacheService:      cacheService,
				SvcnvService:      svcnvService,
				JunctionService:   junctionService,
				ExpressionService: expressionService,
				StatsService:      statsService,
				AseService:        aseService,
			}
			return h(cc)
		}
	})

	// Begin MVC Routes
	// -- Root
	e.GET("/", func(c echo.Context) error {
		fmt.Printf("[%s] - Root hit!\n", time.Now())
		return c.JSON(http.StatusOK, serviceInfoConst.SERVICE_WELCOME)
	})

	// -- Service Info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	// -- Track queries
	e.POST("/mds/svcnv", svcnvMvc.SvcnvQuery)
	e.POST("/mds/junction", junctionMvc.JunctionQuery)
	e.POST("/mds/expression", expressionMvc.ExpressionQuery)
	e.POST("/mds/survival", survivalMvc.SurvivalQuery)
	e.POST("/ase", aseMvc.AseQuery)

	// -- Genes
	e.GET("/genes/search", genesMvc.GenesGetByNomenclatureWildcard,
		// middleware
		ppm.MandateTermAttribute,
		ppm.ValidateOptionalGenomeAttribute)

	// -- Datasets
	e.GET("/datasets/overview", datasetsMvc.GetDatasetOverview,
		// middleware
		ppm.MandateDatasetAttribute)

	// -- Cache
	e.GET("/cache/stats", cacheMvc.GetCacheStats)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
