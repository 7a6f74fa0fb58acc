package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"

	"github.com/isdelr/placeit-be/internal/api/handlers"
	"github.com/isdelr/placeit-be/internal/auth"
	"github.com/isdelr/placeit-be/internal/httpx"
	"github.com/isdelr/placeit-be/internal/observability"
	"github.com/isdelr/placeit-be/internal/services"
	"github.com/isdelr/placeit-be/internal/web"
	"github.com/isdelr/placeit-be/internal/websocket"
)

// RouterParams holds everything the router wires into handlers.
type RouterParams struct {
	Hub             *websocket.Hub
	Tokens          *auth.TokenManager
	UserService     services.UserServiceProvider
	AnalysisService services.AnalysisServiceProvider
	HealthChecker   handlers.HealthChecker
	Renderer        *web.Renderer
	Metrics         *observability.Metrics

	AllowedOrigins   []string
	Production       bool
	MapTilerKey      string
	AnalyzeRateLimit int
}

// NewRouter creates and configures a new Chi router.
func NewRouter(p RouterParams) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(p.Metrics.Middleware)
	r.Use(secureHeaders(p.Production))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   p.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "auth-token"},
		ExposedHeaders:   []string{handlers.AuthTokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(p.UserService, p.Tokens.TTL(), p.Production)
	analysisHandler := handlers.NewAnalysisHandler(p.AnalysisService, p.Metrics, p.MapTilerKey)
	healthHandler := handlers.NewHealthHandler(p.HealthChecker)
	wsHandler := handlers.NewWebSocketHandler(p.Hub, p.AllowedOrigins)

	r.Handle("/metrics", p.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)
		r.Get("/map/config", analysisHandler.GetMapConfig)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)
			r.With(p.Tokens.JWTMiddleware()).Get("/me", userHandler.GetMe)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(p.Tokens.JWTMiddleware())
			r.Get("/geocode", analysisHandler.Search)
			r.With(analyzeLimiter(p.AnalyzeRateLimit)).Post("/analyze", analysisHandler.Analyze)
			r.Get("/ws", wsHandler.Serve)
		})
	})

	if p.Renderer != nil {
		webHandler := handlers.NewWebHandler(p.Renderer, p.UserService, p.AnalysisService, p.Tokens, p.Production)
		r.Get("/", webHandler.Landing)
		r.Get("/about", webHandler.About)
		r.Get("/login", webHandler.LoginForm)
		r.Post("/login", webHandler.Login)
		r.Get("/register", webHandler.RegisterForm)
		r.Post("/register", webHandler.Register)
		r.Post("/logout", webHandler.Logout)
		r.Get("/home", webHandler.Home)
		r.Post("/theme", webHandler.ToggleTheme)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusNotFound, "Not found")
	})

	return r
}

// analyzeLimiter throttles analysis requests per user, or per IP when the
// request carries no claims. limit <= 0 disables it.
func analyzeLimiter(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Message(w, http.StatusTooManyRequests, "Too many analysis requests. Please try again later.")
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && strings.TrimSpace(claims.UserID) != "" {
		return "user:" + claims.UserID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func secureHeaders(production bool) func(http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sm.Process(w, r); err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Secure headers blocked request")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
