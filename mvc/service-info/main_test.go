package serviceInfo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"proteinpaint/api/contexts"
	"proteinpaint/api/models"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
)

func TestGetServiceInfo(t *testing.T) {
	e := echo.New()
	request := httptest.NewRequest(http.MethodGet, "/service-info", nil)
	recorder := httptest.NewRecorder()

	cfg := &models.Config{}
	cfg.SemVer = "0.0.1"

	c := &contexts.PpContext{
		Context: e.NewContext(request, recorder),
		Config:  cfg,
	}

	assert.Nil(t, GetServiceInfo(c))
	assert.Equal(t, http.StatusOK, recorder.Code)

	body := map[string]interface{}{}
	assert.Nil(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "ProteinPaint Query Service", body["name"])
	assert.Equal(t, "0.0.1", body["version"])
}
