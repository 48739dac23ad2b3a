package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"peo_admin/internal/auth"
	"peo_admin/internal/cache"
	"peo_admin/internal/config"
	"peo_admin/internal/httpx"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
	"peo_admin/internal/storage"
	"peo_admin/internal/testutil"
	"peo_admin/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_LoginThenCreateUserPublishesInvalidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth.InitJWT("router-test")
	gdb := testutil.NewDB(t)
	logger := logrus.NewEntry(logrus.New())
	ctx := context.Background()

	hash, err := auth.HashPassword("Root123!")
	require.NoError(t, err)
	require.NoError(t, query.MustNew[model.User](gdb).Create(ctx, &model.User{
		Email: "root@peo.gov.ph", PasswordHash: hash, Role: model.RoleSuperAdmin, Status: model.UserStatusActive,
	}))

	files, err := storage.NewLocal(t.TempDir(), 1<<20)
	require.NoError(t, err)
	pub := ws.NewPublisher(gdb, logger)

	r := gin.New()
	SetupRouter(r, Deps{
		DB:      gdb,
		Config:  &config.Config{JWT: config.JWTConfig{ExpireMinutes: 30, Issuer: "peo_admin"}},
		Queries: cache.Nop{Broadcaster: pub},
		Files:   files,
		Events:  pub,
		Logger:  logger,
	})

	post := func(path, token string, body any) httpx.Response {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(body)
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var resp httpx.Response
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return resp
	}

	resp := post("/api/v1/auth/login", "", map[string]string{"email": "root@peo.gov.ph", "password": "Root123!"})
	require.Equal(t, httpx.CodeSuccess, resp.Code, resp.Message)
	token := resp.Data.(map[string]any)["token"].(string)

	resp = post("/api/v1/users/create", token, map[string]string{
		"name": "Ana", "sex": "FEMALE", "email": "ana@peo.gov.ph", "role": "STAFF",
		"password": "secret1", "confirmPassword": "secret1",
	})
	require.Equal(t, httpx.CodeSuccess, resp.Code, resp.Message)

	events, err := pub.EventsSince(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	var payload ws.InvalidatePayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.ElementsMatch(t, []string{"users:list", "users:stats", "users:divisions"}, payload.Keys)
}
