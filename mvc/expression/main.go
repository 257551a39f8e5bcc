package expression

import (
	"fmt"
	"net/http"
	"time"

	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/datasets"
	"proteinpaint/api/models/dtos"
	errorsDto "proteinpaint/api/models/dtos/errors"
	"proteinpaint/api/mvc"
	expressionService "proteinpaint/api/services/expression"
	"proteinpaint/api/services/parsing"

	"github.com/labstack/echo"
)

// ExpressionQuery serves per-cohort-group expression boxplots for one
// gene off an expression track.
func ExpressionQuery(c echo.Context) error {
	fmt.Printf("[%s] - ExpressionQuery hit!\n", time.Now())
	gc := mvc.RetrieveCommonElements(c)

	req := &dtos.ExpressionRequest{}
	if bindErr := c.Bind(req); bindErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateSimpleErrorResponse("malformed request body"))
	}
	if req.Gene == "" {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(
			apperror.New(apperror.ConfigError, "missing gene")))
	}

	ds, q, resolveErr := mvc.ResolveDatasetQuery(gc, req.DsLabel, req.QueryKey, false, "", "", "")
	if resolveErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(resolveErr))
	}

	trackFile, workingDir, trackErr := gc.CacheService.ResolveTrack(q.File, q.Url, q.IndexUrl)
	if trackErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(trackErr))
	}

	counters := &parsing.Counters{}
	values, fetchErr := gc.ExpressionService.FetchGeneValues(c.Request().Context(),
		trackFile, workingDir, req.Gene, req.Region, counters)
	if fetchErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(fetchErr))
	}

	var groupConfig *datasets.GroupSampleByAttr
	if ds.Cohort != nil {
		groupConfig = ds.Cohort.GroupSampleBy
	}

	response := expressionService.GroupBoxplots(values, ds.SampleAnnotations(), groupConfig)
	response.SkippedLines = counters.ToSkippedLines()

	return c.JSON(http.StatusOK, response)
}
