package svcnv

import (
	"fmt"
	"net/http"
	"time"

	"proteinpaint/api/models/dtos"
	errorsDto "proteinpaint/api/models/dtos/errors"
	"proteinpaint/api/mvc"
	esRepo "proteinpaint/api/repositories/elasticsearch"

	"github.com/labstack/echo"
)

// SvcnvQuery serves the combined CNV/LOH/SV/fusion/ITD/VCF track
// query behind the browser's genome-wide mutation panel.
func SvcnvQuery(c echo.Context) error {
	fmt.Printf("[%s] - SvcnvQuery hit!\n", time.Now())
	gc := mvc.RetrieveCommonElements(c)

	req := &dtos.SvcnvRequest{}
	if bindErr := c.Bind(req); bindErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateSimpleErrorResponse("malformed request body"))
	}

	ds, q, resolveErr := mvc.ResolveDatasetQuery(gc, req.DsLabel, req.QueryKey,
		req.IsCustom, req.File, req.Url, req.IndexUrl)
	if resolveErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(resolveErr))
	}

	response, queryErr := gc.SvcnvService.Query(c.Request().Context(), ds, q, req)
	if queryErr != nil {
		return c.JSON(http.StatusOK, errorsDto.CreateErrorResponse(queryErr))
	}

	// resolve requested gene symbols to coordinates for the client's
	// quick-jump links; lookup failure degrades, never fails the query
	if len(req.Genes) > 0 && gc.Es7Client != nil {
		genes, geneErr := esRepo.GetGenesByNames(gc.Config, gc.Es7Client, c.Request().Context(), req.Genes, req.Genome)
		if geneErr != nil {
			fmt.Printf("[%s] - gene2coord lookup failed: %v\n", time.Now(), geneErr)
		} else if len(genes) > 0 {
			response.Gene2Coord = make(map[string]dtos.Coord)
			for name, gene := range genes {
				response.Gene2Coord[name] = dtos.Coord{Chr: gene.Chrom, Start: gene.Start, Stop: gene.End}
			}
		}
	}

	return c.JSON(http.StatusOK, response)
}
