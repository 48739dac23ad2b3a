package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"peo_admin/api/v1/middleware"
	"peo_admin/internal/cache"
	"peo_admin/internal/httpx"
	"peo_admin/internal/model"
	"peo_admin/internal/project"
	"peo_admin/internal/query"
	"peo_admin/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func call(r *gin.Engine, method, path string, body any) (int, httpx.Response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp httpx.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

func TestProjectsAPI(t *testing.T) {
	gdb := testutil.NewDB(t)
	owner := &model.User{Email: "pe@peo.gov.ph", PasswordHash: "x", Role: model.RoleProvincialEngineer, Status: model.UserStatusActive}
	require.NoError(t, query.MustNew[model.User](gdb).Create(context.Background(), owner))

	h := NewHandler(project.NewService(gdb, cache.Nop{}, logrus.NewEntry(logrus.New())))
	r := gin.New()
	g := r.Group("/projects", func(c *gin.Context) { c.Set(middleware.KeyUID, owner.ID); c.Next() })
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/detail", h.Detail)
	g.POST("/create", h.Create)
	g.POST("/update", h.Update)
	g.POST("/delete", h.Delete)

	body := map[string]any{
		"projectCode":        "P-100",
		"title":              "Slope protection",
		"implementationMode": "BY_CONTRACT",
		"district":           "DISTRICT_3",
		"fundSource":         "GENERAL_FUND",
		"contractCost":       1250000.50,
	}
	status, resp := call(r, http.MethodPost, "/projects/create", body)
	require.Equal(t, http.StatusOK, status, resp.Message)
	id := resp.Data.(map[string]any)["item"].(map[string]any)["id"].(string)

	status, resp = call(r, http.MethodPost, "/projects/create", body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, httpx.CodeAlreadyExists, resp.Code)

	status, resp = call(r, http.MethodPost, "/projects/update", map[string]any{"id": id, "status": "ON_GOING"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ON_GOING", resp.Data.(map[string]any)["item"].(map[string]any)["status"])

	status, resp = call(r, http.MethodPost, "/projects/update", map[string]any{"id": id, "status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, httpx.CodeParamIllegal, resp.Code)

	status, resp = call(r, http.MethodGet, "/projects/stats", nil)
	require.Equal(t, http.StatusOK, status)
	st := resp.Data.(map[string]any)
	assert.EqualValues(t, 1, st["total"])
	assert.EqualValues(t, 1, st["ongoing"])

	status, resp = call(r, http.MethodGet, "/projects/detail?id="+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "P-100", resp.Data.(map[string]any)["item"].(map[string]any)["projectCode"])

	status, resp = call(r, http.MethodGet, "/projects?district=DISTRICT_3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, resp.Data.(map[string]any)["total"])

	status, resp = call(r, http.MethodPost, "/projects/delete", DeleteRequest{IDs: []string{id}})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, resp.Data.(map[string]any)["deleted"])

	status, _ = call(r, http.MethodGet, "/projects/detail?id="+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
