// Package server assembles the application: configuration, storage, the
// realtime stack and the HTTP layer.
package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/rollcall/internal/config"
	"github.com/nfrund/rollcall/internal/database"
	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/handlers"
	"github.com/nfrund/rollcall/internal/logging"
	"github.com/nfrund/rollcall/internal/notify"
	"github.com/nfrund/rollcall/internal/pubsub"
	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/nfrund/rollcall/internal/rendering"
	"github.com/nfrund/rollcall/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E    *echo.Echo
	Cfg  *config.Config
	Repo domain.StudentRepository

	bus       pubsub.Bus
	channels  *realtime.Channels
	issuer    *realtime.Issuer
	bridge    *realtime.Bridge
	notifier  *notify.Notifier
	renderer  rendering.Renderer
	avatars   *storage.AvatarStore
	repoClose func() error

	studentHandler *handlers.StudentHandler
	tokenHandler   *handlers.TokenHandler
	chatbotHandler *handlers.ChatbotHandler
	avatarHandler  *handlers.AvatarHandler
	pagesHandler   *handlers.PagesHandler

	bridgeCancel context.CancelFunc
}

// New creates a new Server instance.
func New() *Server {
	logging.New()
	cfg := config.New()

	repo, repoClose, err := database.NewRepository(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	bus, err := newBus(cfg)
	if err != nil {
		slog.Error("Failed to initialize message bus", "error", err)
		os.Exit(1)
	}

	channels := realtime.NewChannels(bus)
	issuer := realtime.NewIssuer(cfg.RealtimeSigningKey)
	bridge := realtime.NewBridge(channels, issuer)
	notifier := notify.NewNotifier(channels)
	renderer := rendering.NewComponentRenderer()
	avatars := storage.NewOSAvatarStore(cfg.AvatarDir)

	if err := os.MkdirAll(cfg.AvatarDir, 0o755); err != nil {
		slog.Error("Failed to create avatar directory", "error", err, "dir", cfg.AvatarDir)
		os.Exit(1)
	}

	chatbotHandler := handlers.NewChatbotHandler(cfg)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
	e.Use(session.Middleware(store))

	e.Static("/static", "web/static")

	return &Server{
		E:              e,
		Cfg:            cfg,
		Repo:           repo,
		bus:            bus,
		channels:       channels,
		issuer:         issuer,
		bridge:         bridge,
		notifier:       notifier,
		renderer:       renderer,
		avatars:        avatars,
		repoClose:      repoClose,
		studentHandler: handlers.NewStudentHandler(repo, notifier),
		tokenHandler:   handlers.NewTokenHandler(issuer),
		chatbotHandler: chatbotHandler,
		avatarHandler:  handlers.NewAvatarHandler(avatars, repo, notifier),
		pagesHandler:   handlers.NewPagesHandler(repo, notifier, renderer, chatbotHandler),
	}
}

func newBus(cfg *config.Config) (pubsub.Bus, error) {
	if cfg.PubSubBackend == "nats" {
		return pubsub.NewNATSBridge(pubsub.DefaultNATSConfig(cfg.NATSURL))
	}
	return pubsub.NewWatermillBridge(), nil
}
