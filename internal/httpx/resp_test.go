package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h gin.HandlerFunc, mw ...gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/test", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestOK(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) { OK(c, gin.H{"pong": true}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.Equal(t, map[string]any{"pong": true}, resp.Data)

	_, resp = serve(t, func(c *gin.Context) { OKMsg(c, "logged out", nil) })
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "logged out", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestFailErr(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) { FailErr(c, ErrNotFound("project not found")) })
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, resp.Code)
	assert.Equal(t, "project not found", resp.Message)
	assert.Nil(t, resp.Data)

	// the cause is logged, never serialized
	w, resp = serve(t, func(c *gin.Context) {
		FailErr(c, ErrInternalError("internal error", errors.New("dial tcp 10.0.0.5:3306: i/o timeout")))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", resp.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestOKItems(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", func(c *gin.Context) { OKItems(c, []string{"a", "b"}, 25, 3, 10) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	var resp struct {
		Code int      `json:"code"`
		Data ListData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.TotalPages)
	assert.True(t, resp.Data.HasPrev)
	assert.False(t, resp.Data.HasNext, "page 3 of 3 is the last page")
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logrus.NewEntry(logrus.New())))
	r.GET("/test", func(c *gin.Context) { OK(c, gin.H{"rid": c.GetString(RequestIDKey)}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}
