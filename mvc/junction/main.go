package junction

import (
	"fmt"
	"net/http"
	"time"

	"proteinpaint/api/models/dtos"
	errorsDto "proteinpaint/api/models/dtos/errors"
	"proteinpaint/api/mvc"

	"github.com/labstack/echo"
)

// JunctionQuery serves the splice junction track query.
func JunctionQuery(c echo.Context) error {
	fmt.Printf("[%s] - JunctionQuery hit!\n", time.Now())
	gc := mvc.RetrieveCommonElements(c)

	req := &dtos.JunctionRequest{}
	if bindErr := c.Bind(req); bindErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateSimpleErrorResponse("malformed request body"))
	}

	_, q, resolveErr := mvc.ResolveDatasetQuery(gc, req.DsLabel, req.QueryKey,
		req.IsCustom, req.File, req.Url, req.IndexUrl)
	if resolveErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(resolveErr))
	}

	response, queryErr := gc.JunctionService.Query(c.Request().Context(), q, req)
	if queryErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(queryErr))
	}

	return c.JSON(http.StatusOK, response)
}
