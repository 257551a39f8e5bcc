package contexts

import (
	"proteinpaint/api/models"
	"proteinpaint/api/models/datasets"
	"proteinpaint/api/services/ase"
	"proteinpaint/api/services/expression"
	"proteinpaint/api/services/indexcache"
	"proteinpaint/api/services/junction"
	"proteinpaint/api/services/stats"
	"proteinpaint/api/services/svcnv"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
)

type (
	// "Helper" Context to pass into routes that need
	//  the shared service singletons and configuration
	PpContext struct {
		echo.Context
		Es7Client *es7.Client
		Config    *models.Config
		Registry  *datasets.Registry

		CacheService      *indexcache.CacheService
		SvcnvService      *svcnv.Service
		JunctionService   *junction.Service
		ExpressionService *expression.Service
		StatsService      *stats.Service
		AseService        *ase.Service
	}
)
