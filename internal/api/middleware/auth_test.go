package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/pkg/jwthelper"
)

const (
	testKey       = "test-signing-key"
	testUserAgent = "technest-test"
)

type fakeRevocation struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocation) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/", handler, func(ctx *gin.Context) {
		identity := Identity(ctx)
		if identity == nil {
			ctx.String(http.StatusOK, "anonymous")
			return
		}
		ctx.String(http.StatusOK, identity.UserID+":"+string(identity.Role))
	})
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", testUserAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newToken(t *testing.T, userAgent string) (string, *jwthelper.UserClaims) {
	t.Helper()

	token, err := jwthelper.GenerateToken([]byte(testKey), "user-1", string(domain.RoleOrganizer), userAgent, time.Hour)
	require.NoError(t, err)

	claims, err := jwthelper.ParseToken([]byte(testKey), token)
	require.NoError(t, err)

	return token, claims
}

func TestVerifyJWT(t *testing.T) {
	token, _ := newToken(t, testUserAgent)
	router := newRouter(NewAuthenticator(testKey, nil).VerifyJWT())

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1:ORGANIZER", rec.Body.String())
}

func TestVerifyJWT_Rejects(t *testing.T) {
	valid, _ := newToken(t, testUserAgent)
	otherAgent, _ := newToken(t, "another-browser")

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong key", token: func() string {
			tok, err := jwthelper.GenerateToken([]byte("other"), "user-1", "USER", testUserAgent, time.Hour)
			require.NoError(t, err)
			return tok
		}()},
		{name: "user agent mismatch", token: otherAgent},
	}

	router := newRouter(NewAuthenticator(testKey, nil).VerifyJWT())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	rec := doRequest(router, valid)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyJWT_Revoked(t *testing.T) {
	token, claims := newToken(t, testUserAgent)
	revocation := &fakeRevocation{revoked: map[string]bool{claims.ID: true}}
	router := newRouter(NewAuthenticator(testKey, revocation).VerifyJWT())

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	revocation.revoked = map[string]bool{}
	rec = doRequest(router, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyJWT_RevocationStoreDown(t *testing.T) {
	token, _ := newToken(t, testUserAgent)
	router := newRouter(NewAuthenticator(testKey, &fakeRevocation{err: errors.New("connection refused")}).VerifyJWT())

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestOptionalJWT(t *testing.T) {
	token, _ := newToken(t, testUserAgent)
	router := newRouter(NewAuthenticator(testKey, nil).OptionalJWT())

	rec := doRequest(router, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = doRequest(router, "broken")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = doRequest(router, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1:ORGANIZER", rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}
