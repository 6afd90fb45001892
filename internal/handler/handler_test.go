package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/config"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"

	h, err := NewHandler(cfg, nil, nil, nil)
	require.NoError(t, err)
	h.RegisterRoutes()

	return h
}

func doRequest(t *testing.T, h *Handler, req *http.Request) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return rec, resp
}

func TestLoginValidation(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username": "admin"}`))
	rec, resp := doRequest(t, h, req)

	// 业务失败统一返回 200 + success=false
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestAuthWithoutCookie(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/my-info", nil)
	rec, resp := doRequest(t, h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户未登录", resp.Message)
}

func TestAuthWithInvalidToken(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/my-info", nil)
	req.AddCookie(&http.Cookie{Name: "__staffing_manager_token", Value: "not-a-jwt"})
	_, resp := doRequest(t, h, req)

	assert.False(t, resp.Success)
	assert.Equal(t, "无效的令牌", resp.Message)
}

func TestAuthWithExpiredToken(t *testing.T) {
	h := newTestHandler(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: "管理员",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Subject:   "1",
		},
	})
	ss, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/my-info", nil)
	req.AddCookie(&http.Cookie{Name: "__staffing_manager_token", Value: ss})
	_, resp := doRequest(t, h, req)

	assert.False(t, resp.Success)
	assert.Equal(t, "无效的令牌", resp.Message)
}

func TestRequiredRoleRejectsNonAdmin(t *testing.T) {
	h := newTestHandler(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: "厨师",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   "2",
		},
	})
	ss, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(`{}`))
	req.AddCookie(&http.Cookie{Name: "__staffing_manager_token", Value: ss})
	_, resp := doRequest(t, h, req)

	assert.False(t, resp.Success)
	assert.Equal(t, "权限不足", resp.Message)
}
