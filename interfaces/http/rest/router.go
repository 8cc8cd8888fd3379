// Package rest wires the HTTP surface: route table, middleware stack, and
// health endpoints.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"scentbase-backend/application/catalogcache"
	"scentbase-backend/application/services"
	"scentbase-backend/infrastructure/config"
	"scentbase-backend/interfaces/http/rest/handlers"
	"scentbase-backend/interfaces/http/rest/middleware"
	"scentbase-backend/pkg/auth"
)

// Deps are the collaborators the route table needs
type Deps struct {
	Config            *config.Config
	Logger            *zap.Logger
	CatalogCache      *catalogcache.Cache
	CatalogService    *services.CatalogService
	ReviewService     *services.ReviewService
	UserService       *services.UserService
	DiscussionService *services.DiscussionService
	JWTVerifier       *auth.JWTVerifier
	JWTGenerator      *auth.JWTGenerator
	OwnershipPolicy   *auth.OwnershipPolicy
}

// Router creates and configures the HTTP router
type Router struct {
	deps Deps
}

// NewRouter creates a new router instance
func NewRouter(deps Deps) *Router {
	return &Router{deps: deps}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.deps.Logger))

	if rt.deps.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.scentbase.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	authn := middleware.NewAuthenticator(
		rt.deps.JWTVerifier,
		rt.deps.Config.RateLimitPerIP,
		rt.deps.Config.RateLimitPerUser,
		rt.deps.Logger,
	)

	fragranceHandler := handlers.NewFragranceHandler(rt.deps.CatalogCache, rt.deps.CatalogService, rt.deps.ReviewService, rt.deps.Logger)
	discoveryHandler := handlers.NewDiscoveryHandler(rt.deps.CatalogCache, rt.deps.Logger)
	catalogHandler := handlers.NewCatalogHandler(rt.deps.CatalogCache, rt.deps.Logger)
	reviewHandler := handlers.NewReviewHandler(rt.deps.ReviewService, rt.deps.CatalogCache, rt.deps.OwnershipPolicy, rt.deps.Logger)
	userHandler := handlers.NewUserHandler(rt.deps.UserService, rt.deps.CatalogCache, rt.deps.OwnershipPolicy, rt.deps.Logger)
	discussionHandler := handlers.NewDiscussionHandler(rt.deps.DiscussionService, rt.deps.Logger)
	authHandler := handlers.NewAuthHandler(rt.deps.UserService, rt.deps.JWTGenerator, rt.deps.Logger)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/fragrances", func(r chi.Router) {
			r.Get("/", fragranceHandler.List)
			r.Get("/{fragranceID}", fragranceHandler.Get)
			r.Get("/{fragranceID}/similar", fragranceHandler.Similar)
			r.Get("/{fragranceID}/reviews", fragranceHandler.Reviews)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Post("/", fragranceHandler.Create)
				r.Put("/{fragranceID}", fragranceHandler.Update)
				r.Delete("/{fragranceID}", fragranceHandler.Delete)
			})
		})

		r.Get("/brands", discoveryHandler.Brands)
		r.Get("/notes", discoveryHandler.Notes)
		r.Get("/notes/families", discoveryHandler.NoteFamilies)

		r.Route("/catalog", func(r chi.Router) {
			r.Use(authn.Require)
			r.Get("/snapshot", catalogHandler.Snapshot)
			r.Post("/invalidate", catalogHandler.Invalidate)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.List)
			r.Get("/{reviewID}", reviewHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Post("/", reviewHandler.Create)
				r.Put("/{reviewID}", reviewHandler.Update)
				r.Delete("/{reviewID}", reviewHandler.Delete)
				r.Post("/{reviewID}/upvote", reviewHandler.Upvote)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{userID}", userHandler.Get)
			r.Get("/{userID}/collection", userHandler.Collection)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Put("/{userID}", userHandler.Update)
				r.Post("/{userID}/collection/{tab}", userHandler.AddToCollection)
				r.Delete("/{userID}/collection/{tab}", userHandler.RemoveFromCollection)
			})
		})

		r.Route("/discussions", func(r chi.Router) {
			r.Get("/", discussionHandler.List)
			r.Get("/{discussionID}", discussionHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Post("/", discussionHandler.Create)
				r.Post("/{discussionID}/replies", discussionHandler.AddReply)
				r.Delete("/{discussionID}", discussionHandler.Delete)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once a catalogue snapshot can be served
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if _, err := rt.deps.CatalogCache.Snapshot(req.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
