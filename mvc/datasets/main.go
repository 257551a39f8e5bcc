package datasets

import (
	"fmt"
	"net/http"
	"time"

	"proteinpaint/api/models/dtos"
	errorsDto "proteinpaint/api/models/dtos/errors"
	"proteinpaint/api/mvc"

	"github.com/labstack/echo"
)

// GetDatasetOverview reports what one registered dataset offers.
func GetDatasetOverview(c echo.Context) error {
	fmt.Printf("[%s] - GetDatasetOverview hit!\n", time.Now())
	gc := mvc.RetrieveCommonElements(c)

	if gc.Registry == nil {
		return c.JSON(http.StatusOK, errorsDto.CreateSimpleErrorResponse("no dataset registry configured"))
	}

	ds, dsErr := gc.Registry.Dataset(c.QueryParam("dslabel"))
	if dsErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(dsErr))
	}

	queryKeys := make([]string, 0, len(ds.Queries))
	for key := range ds.Queries {
		queryKeys = append(queryKeys, key)
	}

	return c.JSON(http.StatusOK, dtos.DatasetOverviewResponse{
		Label:     ds.Label,
		Genome:    ds.Genome,
		QueryKeys: queryKeys,
		HasCohort: ds.Cohort != nil,
	})
}
