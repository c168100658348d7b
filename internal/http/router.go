package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"progresshub/internal/service"
)

// RouterDeps agrupa lo que necesita NewRouter.
type RouterDeps struct {
	Logger     *zap.Logger
	APIKey     string
	JWT        *service.JWTService
	Users      *UserHandler
	Invites    *InvitationHandler
	Workspace  *WorkspaceHandler
	Tasks      *TaskHandler
	Chat       *ChatHandler
	HealthPing func() error
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	// Middlewares basicos: logging, recovery, JSON content-type y api key.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware(), apiKeyMiddleware(deps.APIKey))

	r.GET("/health", healthHandler(deps.HealthPing))

	auth := r.Group("/auth")
	auth.POST("/signup", deps.Users.SignUp)
	auth.POST("/confirm", deps.Users.Confirm)
	auth.POST("/confirm/resend", deps.Users.ResendConfirmation)
	auth.POST("/login", deps.Users.Login)
	auth.POST("/refresh", deps.Users.RefreshToken)
	auth.POST("/logout", deps.Users.Logout)

	protected := r.Group("")
	protected.Use(JWTAuthMiddleware(deps.JWT))
	protected.GET("/auth/user", deps.Users.CurrentUser)

	teams := protected.Group("/teams")
	teams.GET("/memberships", deps.Invites.ListMemberships)
	teams.GET("/invitations/received", deps.Invites.ListReceived)
	teams.GET("/invitations/sent", deps.Invites.ListSent)
	teams.POST("/invitations", deps.Invites.Send)
	teams.POST("/invitations/:id/accept", deps.Invites.Accept)
	teams.POST("/invitations/:id/cancel", deps.Invites.Cancel)
	teams.POST("/invitations/:id/resend", deps.Invites.Resend)
	teams.GET("/:id/messages", deps.Chat.ListMessages)
	teams.POST("/:id/messages", deps.Chat.PostMessage)

	protected.GET("/projects", deps.Workspace.ListProjects)
	protected.POST("/projects", deps.Workspace.CreateProject)
	protected.GET("/projects/:id", deps.Workspace.GetProject)
	protected.PATCH("/projects/:id", deps.Workspace.UpdateProject)
	protected.GET("/projects/:id/documents", deps.Workspace.ListProjectDocuments)
	protected.GET("/projects/:id/tasks", deps.Tasks.Board)
	protected.POST("/projects/:id/tasks", deps.Tasks.Create)
	protected.PATCH("/tasks/:id", deps.Tasks.Move)
	protected.DELETE("/tasks/:id", deps.Tasks.Delete)
	protected.GET("/documents", deps.Workspace.ListDocuments)
	protected.POST("/documents", deps.Workspace.CreateDocument)
	protected.GET("/activities", deps.Workspace.RecentActivities)
	protected.GET("/reports/summary", deps.Workspace.ReportSummary)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// apiKeyMiddleware exige el header apikey con la clave publica del servicio.
func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("apikey")
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func healthHandler(ping func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
