package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/memberdesk/accounts-api/internal/api/handler"
	"github.com/memberdesk/accounts-api/internal/api/middleware"
	"github.com/memberdesk/accounts-api/internal/core/ports"
	"github.com/memberdesk/accounts-api/internal/core/service"
	"github.com/memberdesk/accounts-api/internal/infrastructure/config"
	mongodb "github.com/memberdesk/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/memberdesk/accounts-api/internal/infrastructure/db/redis"
	"github.com/memberdesk/accounts-api/internal/infrastructure/oauth"
	"github.com/memberdesk/accounts-api/internal/infrastructure/queue"
	"github.com/memberdesk/accounts-api/internal/infrastructure/session"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	notifier ports.Notifier,
	dispatcher *queue.Dispatcher,
	cfg *config.Config,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	accountRepo := mongodb.NewAccountRepository(db)
	credentialService := service.NewCredentialService(accountRepo, cfg.BcryptCost, log)

	sessionStore := session.NewStore(
		session.NewRedisScope(rdb, "accounts", cfg.SessionTTL),
		session.NewMemoryScope(),
		log,
	)

	oauthService := service.NewOAuthService(accountRepo, cfg.JWTSecret, log, oauthProviders(cfg)...)

	resetThrottle := redisdb.NewResetThrottle(rdb)

	authHandler := handler.NewAuthHandler(credentialService, sessionStore, notifier, dispatcher,
		resetThrottle, cfg.JWTSecret, cfg.SessionTTL, log)
	oauthHandler := handler.NewOAuthHandler(oauthService, sessionStore, cfg.JWTSecret, cfg.SessionTTL, log)
	sessionHandler := handler.NewSessionHandler(sessionStore)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/password/forgot", authHandler.ForgotPassword)
	e.POST("/auth/password/reset", authHandler.ResetPassword)
	e.POST("/auth/verify", authHandler.VerifyEmail)
	e.GET("/auth/oauth/:provider", oauthHandler.Begin)
	e.GET("/auth/oauth/:provider/callback", oauthHandler.Callback)

	// --- Session routes (require a bearer token) ---
	s := e.Group("/session", authMiddleware)
	s.GET("", sessionHandler.Current)
	s.DELETE("", sessionHandler.Logout)
	s.GET("/welcome", sessionHandler.Welcome)
	s.POST("/welcome", sessionHandler.MarkWelcome)

	// --- Health probes, metrics, docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}

// oauthProviders registers every provider with configured credentials.
func oauthProviders(cfg *config.Config) []ports.OAuthProvider {
	var providers []ports.OAuthProvider
	if g := cfg.OAuth.Google; g.ClientID != "" {
		providers = append(providers, oauth.NewProvider(oauth.Config{
			Name:         "google",
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			AuthURL:      g.AuthURL,
			TokenURL:     g.TokenURL,
			UserInfoURL:  g.UserInfoURL,
			RedirectURL:  cfg.PublicBaseURL + "/auth/oauth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
		}))
	}
	return providers
}
