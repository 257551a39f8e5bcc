package middleware

import (
	"net/http"

	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure a `dslabel` HTTP query parameter was provided
*/
func MandateDatasetAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		dslabelQP := c.QueryParam("dslabel")
		if len(dslabelQP) == 0 {
			// if no dataset label was provided return an error
			return echo.NewHTTPError(http.StatusBadRequest, "Missing 'dslabel' query parameter for querying!")
		}

		return next(c)
	}
}
