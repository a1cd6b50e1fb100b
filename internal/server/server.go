package server

import (
	"log"

	"noteshare-be/internal/bootstrap"
	"noteshare-be/internal/config"
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB, notes are text
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))
	app.Use(serverutils.RequireJSON())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.AuthController.RegisterRoutes(api)
	c.UserController.RegisterRoutes(api)
	c.NoteController.RegisterRoutes(api)
	c.CatalogController.RegisterRoutes(api)

	registerWebsocket(api, c)
}

// registerWebsocket wires the notification stream. Browsers cannot set an
// Authorization header on a websocket handshake, so the token rides in the
// query string and goes through the same authenticator.
func registerWebsocket(api fiber.Router, c *bootstrap.Container) {
	ws := api.Group("/ws")

	ws.Use("/notifications", func(ctx *fiber.Ctx) error {
		if !fiberws.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		user, err := c.Authenticator.Authenticate(ctx.Context(), "Bearer "+ctx.Query("token"))
		if err != nil {
			return serverutils.NewUnauthorized()
		}
		ctx.Locals("ws_user_id", user.Id)
		return ctx.Next()
	})

	ws.Get("/notifications", fiberws.New(func(conn *fiberws.Conn) {
		userId, ok := conn.Locals("ws_user_id").(uuid.UUID)
		if !ok {
			conn.Close()
			return
		}
		websocket.ServeWs(c.WebSocketHub, conn, userId)
	}))
}
