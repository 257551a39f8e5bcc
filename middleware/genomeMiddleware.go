package middleware

import (
	"net/http"

	genomeBuild "proteinpaint/api/models/constants/genome-build"

	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure an optional `genome` HTTP query parameter, when provided, names a known build
*/
func ValidateOptionalGenomeAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		genomeQP := c.QueryParam("genome")
		if len(genomeQP) == 0 {
			// optional
			return next(c)
		}

		if !genomeBuild.IsKnownGenomeBuild(genomeQP) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown 'genome' query parameter! Check your input")
		}

		return next(c)
	}
}
