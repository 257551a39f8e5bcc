package serviceInfo

import (
	"net/http"

	"proteinpaint/api/contexts"
	serviceInfo "proteinpaint/api/models/constants/service-info"

	"github.com/labstack/echo"
)

// Spec: https://github.com/ga4gh-discovery/ga4gh-service-info
func GetServiceInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type": map[string]interface{}{
			"artifact": serviceInfo.SERVICE_ARTIFACT,
			"group":    serviceInfo.SERVICE_TYPE_NO_VER,
			"version":  c.(*contexts.PpContext).Config.SemVer,
		},
		"id":          serviceInfo.SERVICE_ID,
		"name":        serviceInfo.SERVICE_NAME,
		"description": serviceInfo.SERVICE_DESCRIPTION,
		"organization": map[string]string{
			"name": "St. Jude Children's Research Hospital",
			"url":  "https://www.stjude.org",
		},
		"contactUrl": serviceInfo.SERVICE_CONTACT,
		"version":    c.(*contexts.PpContext).Config.SemVer,
	})
}
