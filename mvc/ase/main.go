package ase

import (
	"fmt"
	"net/http"
	"time"

	"proteinpaint/api/models/dtos"
	errorsDto "proteinpaint/api/models/dtos/errors"
	"proteinpaint/api/mvc"

	"github.com/labstack/echo"
)

// AseQuery serves the allele-specific expression analysis for one
// sample's gene.
func AseQuery(c echo.Context) error {
	fmt.Printf("[%s] - AseQuery hit!\n", time.Now())
	gc := mvc.RetrieveCommonElements(c)

	req := &dtos.AseRequest{}
	if bindErr := c.Bind(req); bindErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateSimpleErrorResponse("malformed request body"))
	}

	response, queryErr := gc.AseService.Query(c.Request().Context(), req)
	if queryErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(queryErr))
	}

	return c.JSON(http.StatusOK, response)
}
