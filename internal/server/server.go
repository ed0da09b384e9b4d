package server

import (
	"backend-touristsafety/internal/alerts"
	"backend-touristsafety/internal/auth"
	"backend-touristsafety/internal/config"
	"backend-touristsafety/internal/db"
	"backend-touristsafety/internal/geolocation"
	"backend-touristsafety/internal/identity"
	"backend-touristsafety/internal/logger"
	"backend-touristsafety/internal/metrics"
	"backend-touristsafety/internal/stream"
	"backend-touristsafety/internal/tracking"
	"backend-touristsafety/internal/zones"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Zones    zones.Source
	Tracking *tracking.Service
	Alerts   *alerts.Service
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     pg,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
		Zones:  zoneSource(cfg, pg),
	}

	locationOpts := geolocation.DefaultOptions
	if t := cfg.LocationTimeout(); t > 0 {
		locationOpts.Timeout = t
	}
	var fixLog db.Querier
	if pg != nil {
		fixLog = pg
	}
	s.Tracking = tracking.NewService(fixLog, s.Stream, s.Zones, tracking.WithLocationOptions(locationOpts))

	var alertStore alerts.Store = alerts.NewMemoryStore()
	if pg != nil {
		alertStore = alerts.NewPostgresStore(pg)
	}
	s.Alerts = alerts.NewService(alertStore, alerts.WithHub(s.Stream), alerts.WithPositions(s.Tracking))

	registerRoutes(s)
	return s
}

// zoneSource serves the built-in catalog unless postgres zones are requested and
// available, in which case the catalog remains the fallback.
func zoneSource(cfg config.Config, pg *pgxpool.Pool) zones.Source {
	static := zones.NewStaticSource()
	if cfg.ZoneSource != "postgres" {
		return static
	}
	if pg == nil {
		logger.L().Warn("zone_source_unavailable", "source", cfg.ZoneSource)
		return static
	}
	return zones.FallbackSource{Primary: zones.NewPostgresSource(pg), Fallback: static}
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", metrics.Handler())

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret, identity.RoleTourist, identity.RolePolice)
	latency := s.Cfg.AuthLatency()

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, auth.WithLatency(latency, latency*3/2)))
	zones.RegisterRoutes(s.App, s.Zones, geolocation.New(nil))
	tracking.RegisterRoutes(s.App.Group("/tracking"), s.Tracking, jwtMiddleware)
	alerts.RegisterRoutes(s.App.Group("/alerts"), s.Alerts, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware, tracking.RequireViewer(s.Tracking, "deviceID"))
}

// Close releases background work owned by the server.
func (s *Server) Close() {
	s.Tracking.Close()
	s.Stream.Close()
}
