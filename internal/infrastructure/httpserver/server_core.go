package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/caller-crm/internal/application/query"
	"github.com/avatarctic/caller-crm/internal/core/ports"
	customMiddleware "github.com/avatarctic/caller-crm/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
	VendorID       string
	TrustProxy     bool
}

type ServerDeps struct {
	ContactService     ports.ContactService
	CallService        ports.CallService
	AgentService       ports.AgentService
	DashboardService   ports.DashboardService
	RateLimiterService ports.RateLimiterService
	QueryCache         *query.Cache
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	contactSvc     ports.ContactService
	callSvc        ports.CallService
	agentSvc       ports.AgentService
	dashboardSvc   ports.DashboardService
	cache          *query.Cache
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	// client addresses key the rate limiter; headers are only honoured behind a proxy
	e.IPExtractor = echo.ExtractIPDirect()
	if serverConfig.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		contactSvc:     deps.ContactService,
		callSvc:        deps.CallService,
		agentSvc:       deps.AgentService,
		dashboardSvc:   deps.DashboardService,
		cache:          deps.QueryCache,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			serverConfig.VendorID,
			deps.RateLimiterService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
