package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
)

// Server bundles the fiber app and its route registrations.
type Server struct {
	app    *fiber.App
	addr   string
	logger *observability.Logger
}

// ServerConfig holds API server configuration.
type ServerConfig struct {
	Addr    string
	Quoter  Quoter
	Listing Listing
	Pending PendingSource
	Balance BalanceReader
	Logger  *observability.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(cfg ServerConfig) *Server {
	app := fiber.New(fiber.Config{
		AppName: "swapd",
	})

	v1 := app.Group("/v1")
	v1.Get("/quote", NewQuoteHandler(cfg.Logger, cfg.Quoter).Handle())
	v1.Get("/pairs", NewPairsHandler(cfg.Logger, cfg.Listing).Handle())
	v1.Get("/pending", NewPendingHandler(cfg.Logger, cfg.Pending).Handle())
	v1.Get("/balance", NewBalanceHandler(cfg.Logger, cfg.Balance, cfg.Listing).Handle())

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	return &Server{app: app, addr: cfg.Addr, logger: cfg.Logger}
}

// Listen serves until Shutdown is called or the listener fails.
func (s *Server) Listen() error {
	s.logger.Info("API server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
