package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/require"

	"github.com/technest/technest-api/internal/api/middleware"
	"github.com/technest/technest-api/internal/config"
	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/pkg/jwthelper"
)

const (
	testSigningKey = "handler-test-key"
	testUserAgent  = "technest-handler-test"
)

// ===== Mock AuthService =====

type mockAuthService struct {
	AuthService
	registerFunc       func(ctx context.Context, name, email, password string) (domain.User, error)
	loginFunc          func(ctx context.Context, email, password string) (domain.User, error)
	federatedLoginFunc func(ctx context.Context, fu domain.FederatedUser) (domain.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	return m.registerFunc(ctx, name, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) FederatedLogin(ctx context.Context, fu domain.FederatedUser) (domain.User, error) {
	return m.federatedLoginFunc(ctx, fu)
}

// ===== Mock TokenRevoker =====

type mockRevoker struct {
	revoked map[string]time.Time
}

func (m *mockRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *mockRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// ===== Mock EventService =====

type mockEventService struct {
	EventService
	createFunc    func(ctx context.Context, identity *domain.Identity, draft domain.EventDraft) (domain.Event, error)
	updateFunc    func(ctx context.Context, identity *domain.Identity, eventID string, patch domain.EventPatch) (domain.Event, error)
	deleteFunc    func(ctx context.Context, identity *domain.Identity, eventID string) error
	listFunc      func(ctx context.Context, filter domain.EventFilter) (domain.EventPage, error)
	getBySlugFunc func(ctx context.Context, identity *domain.Identity, slug string) (domain.Event, error)
	idForSlugFunc func(ctx context.Context, slug string) (string, error)
}

func (m *mockEventService) CreateEvent(ctx context.Context, identity *domain.Identity, draft domain.EventDraft) (domain.Event, error) {
	return m.createFunc(ctx, identity, draft)
}

func (m *mockEventService) UpdateEvent(ctx context.Context, identity *domain.Identity, eventID string, patch domain.EventPatch) (domain.Event, error) {
	return m.updateFunc(ctx, identity, eventID, patch)
}

func (m *mockEventService) DeleteEvent(ctx context.Context, identity *domain.Identity, eventID string) error {
	return m.deleteFunc(ctx, identity, eventID)
}

func (m *mockEventService) ListEvents(ctx context.Context, filter domain.EventFilter) (domain.EventPage, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockEventService) GetEventBySlug(ctx context.Context, identity *domain.Identity, slug string) (domain.Event, error) {
	return m.getBySlugFunc(ctx, identity, slug)
}

func (m *mockEventService) EventIDForSlug(ctx context.Context, slug string) (string, error) {
	return m.idForSlugFunc(ctx, slug)
}

// ===== Mock InterestService =====

type mockInterestService struct {
	InterestService
	expressFunc  func(ctx context.Context, identity *domain.Identity, eventID, status string) (domain.InterestOutcome, error)
	withdrawFunc func(ctx context.Context, identity *domain.Identity, target domain.InterestRef) error
}

func (m *mockInterestService) ExpressInterest(ctx context.Context, identity *domain.Identity, eventID, status string) (domain.InterestOutcome, error) {
	return m.expressFunc(ctx, identity, eventID, status)
}

func (m *mockInterestService) WithdrawInterest(ctx context.Context, identity *domain.Identity, target domain.InterestRef) error {
	return m.withdrawFunc(ctx, identity, target)
}

// ===== Mock UserService =====

type mockUserService struct {
	UserService
	getProfileFunc    func(ctx context.Context, identity *domain.Identity) (domain.Profile, error)
	updateProfileFunc func(ctx context.Context, identity *domain.Identity, name string) (domain.User, error)
	myEventsFunc      func(ctx context.Context, identity *domain.Identity) (domain.UserEvents, error)
	deleteUserFunc    func(ctx context.Context, identity *domain.Identity, userID string) error
}

func (m *mockUserService) GetProfile(ctx context.Context, identity *domain.Identity) (domain.Profile, error) {
	return m.getProfileFunc(ctx, identity)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, identity *domain.Identity, name string) (domain.User, error) {
	return m.updateProfileFunc(ctx, identity, name)
}

func (m *mockUserService) MyEvents(ctx context.Context, identity *domain.Identity) (domain.UserEvents, error) {
	return m.myEventsFunc(ctx, identity)
}

func (m *mockUserService) DeleteUser(ctx context.Context, identity *domain.Identity, userID string) error {
	return m.deleteUserFunc(ctx, identity, userID)
}

// ===== Mock CategoryService =====

type mockCategoryService struct {
	listFunc func(ctx context.Context) ([]domain.Category, error)
}

func (m *mockCategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return m.listFunc(ctx)
}

// ===== Test router =====

type testServices struct {
	auth       *mockAuthService
	events     *mockEventService
	interests  *mockInterestService
	users      *mockUserService
	categories *mockCategoryService
	revoker    *mockRevoker
}

func newTestServices() *testServices {
	return &testServices{
		auth:       &mockAuthService{},
		events:     &mockEventService{},
		interests:  &mockInterestService{},
		users:      &mockUserService{},
		categories: &mockCategoryService{},
		revoker:    &mockRevoker{revoked: map[string]time.Time{}},
	}
}

func testAPIConfig() *config.APIConfig {
	return &config.APIConfig{
		JWTSigningKey: testSigningKey,
		JWTTTL:        time.Hour,
	}
}

func (s *testServices) router(oauthConf *config.OAuthConfig) (*gin.Engine, *OAuthHandler) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	authn := middleware.NewAuthenticator(testSigningKey, s.revoker)
	authHandler := NewAuthHandler(testAPIConfig(), s.auth, s.revoker)
	if oauthConf == nil {
		oauthConf = &config.OAuthConfig{}
	}
	cookie := securecookie.New(securecookie.GenerateRandomKey(32), nil)
	oauthHandler := NewOAuthHandler(oauthConf, authHandler, cookie)
	eventHandler := NewEventHandler(s.events)
	interestHandler := NewInterestHandler(s.interests)
	userHandler := NewUserHandler(s.users)
	categoryHandler := NewCategoryHandler(s.categories)

	api := router.Group("/api/v1")
	api.POST("/auth/register", authHandler.HandleRegister)
	api.POST("/auth/login", authHandler.HandleLogin)
	api.GET("/auth/oauth/:provider", oauthHandler.HandleOAuthStart)
	api.GET("/auth/oauth/:provider/callback", oauthHandler.HandleOAuthCallback)
	api.GET("/categories", categoryHandler.HandleListCategories)
	api.GET("/events", eventHandler.HandleListEvents)
	api.GET("/events/:slug", authn.OptionalJWT(), eventHandler.HandleGetEvent)

	private := api.Group("", authn.VerifyJWT())
	private.POST("/auth/logout", authHandler.HandleLogout)
	private.POST("/events", eventHandler.HandleCreateEvent)
	private.POST("/events/interest", interestHandler.HandleInterest)
	private.DELETE("/events/interest", interestHandler.HandleWithdrawInterest)
	private.PUT("/events/:slug", eventHandler.HandleUpdateEvent)
	private.DELETE("/events/:slug", eventHandler.HandleDeleteEvent)
	private.GET("/user/profile", userHandler.HandleGetProfile)
	private.PUT("/user/profile", userHandler.HandleUpdateProfile)
	private.GET("/user/events", userHandler.HandleMyEvents)
	private.DELETE("/user/events/interest", interestHandler.HandleRemoveMyInterest)
	private.DELETE("/admin/users/:userID", userHandler.HandleDeleteUser)

	return router, oauthHandler
}

func tokenFor(t *testing.T, userID string, role domain.Role) string {
	t.Helper()

	token, err := jwthelper.GenerateToken([]byte(testSigningKey), userID, string(role), testUserAgent, time.Hour)
	require.NoError(t, err)

	return token
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func withHeader(key, value string) requestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

func serve(router http.Handler, method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", testUserAgent)

	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
