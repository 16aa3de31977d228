package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"

	"github.com/mapleins/community/internal/config"
	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/edge"
	"github.com/mapleins/community/internal/feed"
	"github.com/mapleins/community/internal/onboarding"
	"github.com/mapleins/community/internal/stats"
	"github.com/mapleins/community/internal/waitlist"
	"github.com/mapleins/community/internal/web"
)

type App struct {
	log            *zap.Logger
	db             database.Repository
	srv            *http.Server
	hub            *feed.Hub
	onboarding     *onboarding.Service
	waitlist       *waitlist.Service
	pages          *web.Templates
	stats          stats.StatsProvider
	signingKey     []byte
	allowedOrigins []string
}

func NewApp(
	logger *zap.Logger,
	hub *feed.Hub,
	db database.Repository,
	wl *waitlist.Service,
	pages *web.Templates,
	statsProvider stats.StatsProvider,
	cfg *config.Config,
) *App {
	s := &App{
		log:            logger,
		db:             db,
		hub:            hub,
		onboarding:     onboarding.NewService(db, logger.Named("onboarding")),
		waitlist:       wl,
		pages:          pages,
		stats:          statsProvider,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(s.routes(cfg.LandingOnly))

	s.srv = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: s.errorHandler(h),
	}

	return s
}

func (s *App) routes(landingOnly bool) chi.Router {
	mux := chi.NewRouter()
	mux.Use(s.requestTracing)
	mux.Use(edge.LandingOnly(landingOnly))

	mux.Get("/healthz", s.healthCheck)
	if h, ok := s.stats.(interface{ Handler() http.Handler }); ok {
		mux.Method(http.MethodGet, "/debug/vars", h.Handler())
	}

	mux.Get("/", s.landingPage)
	mux.Get(edge.WaitlistPath, s.waitlistPage)
	mux.Get("/auth/sign-in", s.signInPage)
	mux.Get("/onboarding", s.onboardingPage)
	mux.Get("/guides", s.guidesPage)
	mux.Group(func(r chi.Router) {
		r.Use(s.sessionGuard)
		r.Get("/app", s.appPage)
		r.Get("/rooms", s.roomsPage)
	})

	mux.Mount("/api", s.apiRoutes())
	mux.With(s.authMiddleware).Get("/ws", s.serveWs)

	return mux
}

func (s *App) apiRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/waitlist", s.submitWaitlist)
	r.Get("/guides", s.getGuide)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.signup)
		r.Post("/signin", s.signin)
		r.Post("/logout", s.logout)
		r.With(s.authMiddleware).Get("/session", s.session)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/profile", s.getOwnProfile)
		r.Post("/onboarding", s.completeOnboarding)

		r.Get("/profiles", s.listProfiles)
		r.Get("/profiles/{id}", s.getProfile)

		r.Get("/rooms", s.listRooms)
		r.Route("/rooms/{id}", func(r chi.Router) {
			r.Get("/", s.getRoom)
			r.Post("/join", s.joinRoom)
			r.Get("/membership", s.getMembership)
			r.Get("/messages", s.getMessages)
			r.Post("/messages", s.createMessage)
		})
	})

	return r
}

// Handler exposes the full middleware chain, mostly for tests.
func (s *App) Handler() http.Handler {
	return s.srv.Handler
}

func (s *App) Start() error {
	s.log.Info("starting server", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
