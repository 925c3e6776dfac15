package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/productcube/workspace-service/internal/models"
)

type stubResolver struct {
	tokens map[string]string
	err    error
}

func (r *stubResolver) Resolve(ctx context.Context, token string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.tokens[token], nil
}

func identityRouter(resolver TokenResolver, serviceKey string) (*gin.Engine, *models.Caller) {
	gin.SetMode(gin.TestMode)
	seen := &models.Caller{}
	r := gin.New()
	r.Use(Identity(resolver, serviceKey, zap.NewNop()))
	r.GET("/probe", func(c *gin.Context) {
		*seen = CallerFrom(c)
		c.Status(http.StatusOK)
	})
	return r, seen
}

func TestIdentityResolvesSessionToken(t *testing.T) {
	r, seen := identityRouter(&stubResolver{tokens: map[string]string{"tok-1": "u1"}}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderSessionToken, "tok-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", seen.UserID)
	assert.False(t, seen.IsService)
}

func TestIdentityAllowsAnonymous(t *testing.T) {
	r, seen := identityRouter(&stubResolver{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, seen.Anonymous())
}

func TestIdentityMarksServicePeer(t *testing.T) {
	r, seen := identityRouter(&stubResolver{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderServiceAuth, "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, seen.IsService)
}

func TestIdentityIgnoresWrongServiceKey(t *testing.T) {
	r, seen := identityRouter(&stubResolver{}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderServiceAuth, "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, seen.IsService)
}

func TestIdentityRejectsOnResolverFailure(t *testing.T) {
	r, _ := identityRouter(&stubResolver{err: fmt.Errorf("auth down")}, "secret")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderSessionToken, "tok-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
