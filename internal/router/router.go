package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/testra/backoffice-api/internal/handler"
	appointmenth "github.com/testra/backoffice-api/internal/handler/appointment"
	authh "github.com/testra/backoffice-api/internal/handler/auth"
	companyh "github.com/testra/backoffice-api/internal/handler/company"
	eventsh "github.com/testra/backoffice-api/internal/handler/events"
	notificationh "github.com/testra/backoffice-api/internal/handler/notification"
	"github.com/testra/backoffice-api/internal/middleware"
	"github.com/testra/backoffice-api/internal/model"
)

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        float64
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MetricsPrefix    string
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         *authh.Handler
	appointmentH  *appointmenth.Handler
	companyH      *companyh.Handler
	notificationH *notificationh.Handler
	eventsH       *eventsh.Handler
	h             *handler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authh.Handler,
	appointmentH *appointmenth.Handler,
	companyH *companyh.Handler,
	notificationH *notificationh.Handler,
	eventsH *eventsh.Handler,
	h *handler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidation()

	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		appointmentH:  appointmentH,
		companyH:      companyH,
		notificationH: notificationH,
		eventsH:       eventsH,
		h:             h,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = middleware.DefaultTimeoutConfig().Duration
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: timeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", r.authH.Register)
		auth.POST("/login", r.authH.Login)
		auth.POST("/refresh", r.authH.Refresh)
	}
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/logout", r.authH.Logout)
		auth.GET("/profile", r.authH.Profile)
	}

	appointments := rg.Group("/appointments")
	{
		appointments.POST("", r.appointmentH.CreateAppointment)
		appointments.GET("", r.appointmentH.ListAppointments)
		appointments.GET("/:id", r.appointmentH.GetAppointment)
		appointments.PUT("/:id", r.appointmentH.UpdateAppointment)
		appointments.PATCH("/:id/reschedule", r.appointmentH.RescheduleAppointment)
		appointments.DELETE("/:id", r.appointmentH.DeleteAppointment)
	}

	calendar := rg.Group("/calendar")
	{
		calendar.GET("/view", r.appointmentH.CalendarView)
		calendar.GET("/stats", r.appointmentH.CalendarStats)
		calendar.GET("/upcoming", r.appointmentH.UpcomingAppointments)
	}

	companies := rg.Group("/companies")
	companies.Use(r.auth.RequireRole(model.UserRoleAdmin))
	{
		companies.POST("", r.companyH.CreateCompany)
		companies.GET("", r.companyH.ListCompanies)
		companies.GET("/stats", r.companyH.CompanyStats)
		companies.GET("/:id", r.companyH.GetCompany)
		companies.PUT("/:id", r.companyH.UpdateCompany)
		companies.DELETE("/:id", r.companyH.DeleteCompany)
	}

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", r.notificationH.ListNotifications)
		notifications.GET("/unread-count", r.notificationH.UnreadCount)
		notifications.PATCH("/:id/read", r.notificationH.MarkRead)
		notifications.POST("/mark-all-read", r.notificationH.MarkAllRead)
		notifications.DELETE("/:id", r.notificationH.DeleteNotification)
		notifications.DELETE("", r.notificationH.DeleteAll)
	}

	events := rg.Group("/events")
	{
		events.GET("/stream", r.eventsH.Stream)
	}

	// Testing panel, admin only.
	testing := rg.Group("/testing")
	testing.Use(r.auth.RequireRole(model.UserRoleAdmin))
	{
		testing.POST("/notifications", r.notificationH.CreateNotification)
		testing.POST("/notifications/quick/:type", r.notificationH.QuickTest)
		testing.POST("/notifications/bulk", r.notificationH.BulkTest)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
