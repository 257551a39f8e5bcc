package cache

import (
	"fmt"
	"net/http"
	"time"

	"proteinpaint/api/models/dtos"
	"proteinpaint/api/mvc"

	"github.com/labstack/echo"
)

// GetCacheStats reports the index cache's size for operational
// visibility.
func GetCacheStats(c echo.Context) error {
	fmt.Printf("[%s] - GetCacheStats hit!\n", time.Now())
	gc := mvc.RetrieveCommonElements(c)

	entries, totalBytes := gc.CacheService.Stats()
	return c.JSON(http.StatusOK, dtos.CacheStatsResponse{
		Entries:    entries,
		TotalBytes: totalBytes,
	})
}
