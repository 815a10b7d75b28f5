package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter собирает маршруты API
func NewRouter(h *Handler, verifier *TokenVerifier, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), Authenticate(verifier))

	r.GET("/healthz", h.Health)

	courses := r.Group("/courses")
	{
		courses.GET("", h.ListCourses)
		courses.GET("/:id", h.GetCourse)
		courses.GET("/:id/access", h.CourseAccess)
		courses.GET("/:id/materials", RequireUser(), h.ListMaterials)
		courses.POST("/:id/enroll", RequireUser(), h.Enroll)
	}

	r.POST("/payments/callback", h.PaymentCallback)
	r.GET("/announcements", h.ListAnnouncements)

	sessions := r.Group("/sessions")
	{
		sessions.GET("/live", h.ListLive)
		sessions.GET("/upcoming", h.ListUpcoming)
		sessions.POST("", RequireAdmin(), h.CreateSession)
		sessions.POST("/:id/start", RequireUser(), h.StartSession)
		sessions.POST("/leave", RequireUser(), h.Leave)
		sessions.POST("/sweep", RequireAdmin(), h.Sweep)
	}

	r.GET("/join", h.JoinByLink)
	r.POST("/join", h.Join)

	admin := r.Group("/admin", RequireAdmin())
	{
		admin.POST("/courses", h.CreateCourse)
		admin.POST("/courses/:id/materials", h.AddMaterial)
		admin.POST("/enrollments/:id/revoke", h.RevokeEnrollment)
	}

	return r
}
