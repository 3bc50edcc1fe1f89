package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harentsoaR/mediflow-portal/internal/access"
	"github.com/harentsoaR/mediflow-portal/internal/middleware"
)

// Router wires every portal screen behind the gate rule for its path.
// A nil gatherer leaves /metrics unregistered.
func Router(h *Handler, rules []access.Rule, origins []string, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(h.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.EmergencyHeader},
		AllowCredentials: true,
	}))

	gate := func(path string) gin.HandlerFunc {
		rule, ok := access.RuleFor(rules, path)
		if !ok {
			rule = access.Rule{Path: path}
		}
		return middleware.Gate(h.Sessions, h.Gate, rule, h.AuthTimeout)
	}

	r.GET("/health", h.Health)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/login", h.LoginPage)
	r.GET("/unauthorized", h.Unauthorized)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/logout", h.Logout)
		authRoutes.GET("/session", h.Session)
	}

	r.GET("/dashboard", gate("/dashboard"), h.Dashboard)
	r.GET("/health-records", gate("/health-records"), h.HealthRecords)
	r.GET("/records", gate("/records"), h.HealthRecords)

	appointments := r.Group("/appointments", gate("/appointments"))
	{
		appointments.GET("", h.GetAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.PATCH("/:id/cancel", h.CancelAppointment)
	}

	documents := r.Group("/documents", gate("/documents"))
	{
		documents.GET("", h.GetDocuments)
		documents.POST("", h.UploadDocument)
		documents.DELETE("/:id", h.DeleteDocument)
	}

	r.GET("/settings", gate("/settings"), h.Settings)
	r.GET("/notifications", gate("/notifications"), h.Notifications)
	r.GET("/my-patients", gate("/my-patients"), h.MyPatients)
	r.GET("/emergency-access", gate("/emergency-access"), h.EmergencyAccess)
	r.GET("/audit", gate("/audit"), h.AuditTrail)

	apiRoutes := r.Group("/api")
	{
		apiRoutes.PUT("/profile", gate("/settings"), h.UpdateProfile)
		apiRoutes.GET("/audit", gate("/audit"), h.AuditTrail)
	}

	return r
}
