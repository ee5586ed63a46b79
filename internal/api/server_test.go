package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technest/technest-api/internal/config"
	"github.com/technest/technest-api/internal/pkg/jwthelper"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		API: &config.APIConfig{
			Environment:        "test",
			BaseURL:            "localhost:8080",
			JWTSigningKey:      "server-test-key",
			JWTTTL:             time.Hour,
			AllowedCORSDomains: []string{"http://localhost:3000"},
		},
		Gin:      &config.GinConfig{Mode: "test"},
		Postgres: &config.PostgresConfig{},
		Redis:    &config.RedisConfig{},
		OAuth:    &config.OAuthConfig{},
		Events:   &config.EventsConfig{DefaultCity: "São Paulo", DefaultState: "SP", DefaultCurrency: "BRL"},
		Policy:   &config.PolicyConfig{AnyAuthenticatedUserMayOrganize: true},
	}
}

func get(s *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

// Routes exercised here never reach the database.
func TestServer_Routes(t *testing.T) {
	s := NewServer(testConfig(), nil, nil)

	rec := get(s, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "technest_http_requests_total")

	rec = get(s, http.MethodPost, "/api/v1/events", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(s, http.MethodDelete, "/api/v1/events/interest", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(s, http.MethodGet, "/api/v1/auth/oauth/github", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	s := NewServer(testConfig(), nil, nil)

	rec := get(s, http.MethodOptions, "/api/v1/events", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(s, http.MethodOptions, "/api/v1/events", map[string]string{
		"Origin":                        "http://evil.test",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_LogoutRevokesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	conf := testConfig()
	s := NewServer(conf, nil, client)

	token, err := jwthelper.GenerateToken([]byte(conf.API.JWTSigningKey), "u1", "USER", "server-test", time.Hour)
	require.NoError(t, err)
	header := map[string]string{
		"Authorization": "Bearer " + token,
		"User-Agent":    "server-test",
	}

	rec := get(s, http.MethodPost, "/api/v1/auth/logout", header)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, mr.Keys(), 1)

	rec = get(s, http.MethodPost, "/api/v1/auth/logout", header)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
