package genes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"proteinpaint/api/models/dtos"
	errorsDto "proteinpaint/api/models/dtos/errors"
	"proteinpaint/api/mvc"
	esRepo "proteinpaint/api/repositories/elasticsearch"

	"github.com/labstack/echo"
)

// GenesGetByNomenclatureWildcard resolves a partial gene symbol into
// matching gene coordinate documents.
func GenesGetByNomenclatureWildcard(c echo.Context) error {
	fmt.Printf("[%s] - GenesGetByNomenclatureWildcard hit!\n", time.Now())
	gc := mvc.RetrieveCommonElements(c)

	// Name search term
	term := c.QueryParam("term")

	// Genome build; wildcard search when absent
	genome := c.QueryParam("genome")

	// Size
	var (
		size        int = 25
		sizeCastErr error
	)
	if len(c.QueryParam("size")) > 0 {
		sizeQP := c.QueryParam("size")
		size, sizeCastErr = strconv.Atoi(sizeQP)
		if sizeCastErr != nil {
			size = 25
		}
	}

	fmt.Printf("Executing wildcard genes search for term %s, genome %s (max size: %d)\n", term, genome, size)

	// Execute
	genes, searchErr := esRepo.GetGeneDocumentsByTermWildcard(gc.Config, gc.Es7Client,
		c.Request().Context(), term, genome, size)
	if searchErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(searchErr))
	}

	fmt.Printf("Found %d docs!\n", len(genes))

	geneResponseDTO := dtos.GenesResponseDTO{
		Term:    term,
		Count:   len(genes),
		Results: genes,
		Status:  200,
		Message: "Success",
	}

	return c.JSON(http.StatusOK, geneResponseDTO)
}
