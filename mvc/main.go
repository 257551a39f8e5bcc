package mvc

import (
	"proteinpaint/api/contexts"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/datasets"

	"github.com/labstack/echo"
)

func RetrieveCommonElements(c echo.Context) *contexts.PpContext {
	return c.(*contexts.PpContext)
}

// ResolveDatasetQuery maps a request's track reference onto the
// registry: official requests name a `dslabel` and `querykey`, custom
// requests carry the file/url directly and get a synthetic query with
// no dataset behind it.
func ResolveDatasetQuery(gc *contexts.PpContext,
	dslabel string, querykey string,
	isCustom bool, file string, url string, indexUrl string) (*datasets.Dataset, *datasets.Query, error) {

	if isCustom {
		if file == "" && url == "" {
			return nil, nil, apperror.New(apperror.ConfigError, "custom track has neither file nor url")
		}
		return nil, &datasets.Query{
			File:     file,
			Url:      url,
			IndexUrl: indexUrl,
		}, nil
	}

	if gc.Registry == nil {
		return nil, nil, apperror.New(apperror.ConfigError, "no dataset registry configured")
	}
	ds, dsErr := gc.Registry.Dataset(dslabel)
	if dsErr != nil {
		return nil, nil, dsErr
	}
	q, qErr := ds.Query(querykey)
	if qErr != nil {
		return nil, nil, qErr
	}
	return ds, q, nil
}
