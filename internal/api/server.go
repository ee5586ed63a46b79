package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/technest/technest-api/docs"
	v1 "github.com/technest/technest-api/internal/api/handler/v1"
	"github.com/technest/technest-api/internal/api/middleware"
	"github.com/technest/technest-api/internal/config"
	"github.com/technest/technest-api/internal/metrics"
	"github.com/technest/technest-api/internal/repository"
	"github.com/technest/technest-api/internal/repository/cache"
	"github.com/technest/technest-api/internal/repository/dao"
	"github.com/technest/technest-api/internal/service"
)

const basePath = "/api/v1"

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	blocklist *cache.TokenBlocklist
}

type handlers struct {
	auth      *v1.AuthHandler
	oauth     *v1.OAuthHandler
	events    *v1.EventHandler
	interests *v1.InterestHandler
	users     *v1.UserHandler
	category  *v1.CategoryHandler
}

// repositories are shared by every service so that one request never sees two
// pools.
type repositories struct {
	users      *repository.UserRepository
	events     *repository.EventRepository
	interests  *repository.InterestRepository
	categories *repository.CategoryRepository
}

// NewServer wires the API. redisClient may be nil, in which case logout cannot
// revoke tokens before they expire.
func NewServer(conf *config.AppConfig, db *gorm.DB, redisClient *redis.Client) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}
	if redisClient != nil {
		s.blocklist = cache.NewTokenBlocklist(redisClient)
	}

	s.MountMiddlewares()

	repos := newRepositories(db)
	h := handlers{
		auth:      s.initAuthHandler(repos),
		events:    s.initEventHandler(repos),
		interests: s.initInterestHandler(repos),
		users:     s.initUserHandler(repos),
		category:  s.initCategoryHandler(repos),
	}
	h.oauth = s.initOAuthHandler(h.auth)

	s.MountHandlers(h)

	return s
}

func newRepositories(db *gorm.DB) repositories {
	return repositories{
		users:      repository.NewUserRepository(dao.NewUserDAO(db)),
		events:     repository.NewEventRepository(dao.NewEventDAO(db)),
		interests:  repository.NewInterestRepository(dao.NewInterestDAO(db)),
		categories: repository.NewCategoryRepository(dao.NewCategoryDAO(db)),
	}
}

func (s *Server) initAuthHandler(repos repositories) *v1.AuthHandler {
	svc := service.NewAuthService(repos.users)

	// A nil *TokenBlocklist must not reach the handler as a non-nil interface.
	var revoker v1.TokenRevoker
	if s.blocklist != nil {
		revoker = s.blocklist
	}

	return v1.NewAuthHandler(s.Config.API, svc, revoker)
}

func (s *Server) initOAuthHandler(auth *v1.AuthHandler) *v1.OAuthHandler {
	hashKey := []byte(s.Config.API.CookieHashKey)
	if len(hashKey) == 0 {
		zap.L().Warn("api.cookie_hash_key not set, OAuth state cookies will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(32)
	}

	var blockKey []byte
	if s.Config.API.CookieBlockKey != "" {
		blockKey = []byte(s.Config.API.CookieBlockKey)
	}

	return v1.NewOAuthHandler(s.Config.OAuth, auth, securecookie.New(hashKey, blockKey))
}

func (s *Server) initEventHandler(repos repositories) *v1.EventHandler {
	svc := service.NewEventService(
		repos.events,
		repos.users,
		repos.categories,
		repos.interests,
		service.Policy{AnyAuthenticatedUserMayOrganize: s.Config.Policy.AnyAuthenticatedUserMayOrganize},
		service.EventDefaults{
			City:     s.Config.Events.DefaultCity,
			State:    s.Config.Events.DefaultState,
			Currency: s.Config.Events.DefaultCurrency,
		},
	)

	return v1.NewEventHandler(svc)
}

func (s *Server) initInterestHandler(repos repositories) *v1.InterestHandler {
	svc := service.NewInterestService(repos.interests, repos.events)
	return v1.NewInterestHandler(svc)
}

func (s *Server) initUserHandler(repos repositories) *v1.UserHandler {
	svc := service.NewUserService(repos.users, repos.events, repos.interests)
	return v1.NewUserHandler(svc)
}

func (s *Server) initCategoryHandler(repos repositories) *v1.CategoryHandler {
	svc := service.NewCategoryService(repos.categories)
	return v1.NewCategoryHandler(svc)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(metrics.Middleware())
}

func (s *Server) MountHandlers(h handlers) {
	var revocation middleware.RevocationChecker
	if s.blocklist != nil {
		revocation = s.blocklist
	}
	authn := middleware.NewAuthenticator(s.Config.API.JWTSigningKey, revocation)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/register", h.auth.HandleRegister)
		public.POST("/auth/login", h.auth.HandleLogin)
		public.GET("/auth/oauth/:provider", h.oauth.HandleOAuthStart)
		public.GET("/auth/oauth/:provider/callback", h.oauth.HandleOAuthCallback)

		public.GET("/categories", h.category.HandleListCategories)
		public.GET("/events", h.events.HandleListEvents)
		public.GET("/events/:slug", authn.OptionalJWT(), h.events.HandleGetEvent)
	}

	private := s.Router.Group(basePath, authn.VerifyJWT())
	{
		private.POST("/auth/logout", h.auth.HandleLogout)

		private.POST("/events", h.events.HandleCreateEvent)
		private.PUT("/events/:slug", h.events.HandleUpdateEvent)
		private.DELETE("/events/:slug", h.events.HandleDeleteEvent)

		private.POST("/events/interest", h.interests.HandleInterest)
		private.DELETE("/events/interest", h.interests.HandleWithdrawInterest)

		private.GET("/user/profile", h.users.HandleGetProfile)
		private.PUT("/user/profile", h.users.HandleUpdateProfile)
		private.GET("/user/events", h.users.HandleMyEvents)
		private.DELETE("/user/events/interest", h.interests.HandleRemoveMyInterest)

		private.DELETE("/admin/users/:userID", h.users.HandleDeleteUser)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", metrics.Handler())

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "TechNest API"
	docs.SwaggerInfo.Description = "Community tech events: listings, interests and organizer tools."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
