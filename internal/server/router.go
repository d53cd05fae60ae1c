package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
	"purecerts-console/internal/handler"
	"purecerts-console/internal/hub"
	"purecerts-console/internal/middleware"
	"purecerts-console/internal/obs"
	"purecerts-console/internal/storage"
	"purecerts-console/internal/web"
)

const loginPath = "/login"

type Deps struct {
	Session  handler.SessionManager
	API      *api.Client
	Hub      *hub.Hub
	Storage  storage.Storage
	Renderer *web.Renderer

	// LoginLimiter throttles POST /login per client IP; nil disables it.
	LoginLimiter *middleware.RateLimiter
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.LoggerWithFormatter(logLine))
	r.Use(obs.Instrument())
	r.Use(middleware.SameOrigin())
	r.HTMLRender = deps.Renderer

	health := &handler.HealthHandler{API: deps.API}
	r.GET("/health", health.Live)
	r.GET("/health/upstream", health.Upstream)
	r.GET("/metrics", gin.WrapH(obs.Handler()))

	wsHandler := &handler.WebSocketHandler{Hub: deps.Hub, Session: deps.Session}
	r.GET("/ws/auth", wsHandler.Serve)

	authHandler := &handler.AuthHandler{Session: deps.Session}
	r.GET(loginPath, authHandler.LoginPage)
	if deps.LoginLimiter != nil {
		r.POST(loginPath, middleware.RateLimitMiddleware(deps.LoginLimiter), authHandler.Login)
	} else {
		r.POST(loginPath, authHandler.Login)
	}
	r.POST("/logout", authHandler.Logout)

	protected := r.Group("/")
	protected.Use(middleware.RequireSession(deps.Session, middleware.GuardOptions{
		LoginPath: loginPath,
		Loading:   handler.RenderLoading,
	}))

	dashboard := &handler.DashboardHandler{API: deps.API}
	protected.GET("/", dashboard.Show)

	certs := &handler.CertificateHandler{API: deps.API}
	protected.GET("/certificates", certs.List)
	protected.GET("/certificates/new", certs.New)
	protected.POST("/certificates", certs.Issue)
	protected.GET("/certificates/:id", certs.Show)
	protected.POST("/certificates/:id/renew", certs.Renew)
	protected.POST("/certificates/:id/revoke", certs.Revoke)
	protected.POST("/certificates/:id/delete", certs.Delete)
	protected.GET("/certificates/:id/download", certs.Download)

	cas := &handler.CAHandler{API: deps.API}
	protected.GET("/cas", cas.List)
	protected.GET("/cas/new", cas.New)
	protected.POST("/cas", cas.Create)
	protected.GET("/cas/:id", cas.Show)
	protected.POST("/cas/:id/delete", cas.Delete)

	users := &handler.UserHandler{API: deps.API}
	protected.GET("/users", users.List)
	protected.POST("/users/invite", users.Invite)
	protected.POST("/users/:id/delete", users.Delete)

	audit := &handler.AuditHandler{API: deps.API}
	protected.GET("/audit", audit.List)
	protected.GET("/audit/:id", audit.Show)

	settings := &handler.SettingsHandler{API: deps.API, Session: deps.Session, Storage: deps.Storage}
	protected.GET("/settings/profile", settings.Profile)
	protected.POST("/settings/profile", settings.UpdateProfile)
	protected.GET("/settings/security", settings.Security)
	protected.POST("/settings/sessions/revoke-others", settings.RevokeOtherSessions)
	protected.POST("/settings/sessions/:id/revoke", settings.RevokeSession)
	protected.GET("/settings/api-keys", settings.APIKeys)
	protected.POST("/settings/api-keys", settings.CreateAPIKey)
	protected.POST("/settings/api-keys/:id/revoke", settings.RevokeAPIKey)
	protected.GET("/settings/billing", settings.Billing)
	protected.GET("/settings/organization", settings.Organization)
	protected.POST("/settings/organization", settings.UpdateOrganization)

	return r
}

// logLine is gin's default access line with the request ID appended.
func logLine(p gin.LogFormatterParams) string {
	id, _ := p.Keys[middleware.RequestIDKey].(string)
	return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v | %s\n%s",
		p.TimeStamp.Format(time.RFC3339),
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		p.Method,
		p.Path,
		id,
		p.ErrorMessage,
	)
}
