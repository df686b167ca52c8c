package handlers

import (
	"log"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gr8terthings/signup-proxy/internal/infra/http/middleware"
)

type RouterOptions struct {
	Logger *log.Logger
	// AllowedOrigins defaults to "*", which also stamps every response with
	// Access-Control-Allow-Origin: * whether or not the request sent an Origin.
	AllowedOrigins []string
	// RateLimiter is optional.
	RateLimiter *RateLimiter
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP. Only
	// enable it behind a proxy that overwrites those headers, otherwise any
	// client can pick its own rate-limit key.
	TrustProxy bool
}

func NewRouter(subscribe *SubscribeHandler, survey *SurveyHandler, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	if opts.Logger != nil {
		r.Use(chimw.RequestLogger(&chimw.DefaultLogFormatter{Logger: opts.Logger, NoColor: true}))
	}
	r.Use(chimw.Recoverer)
	if slices.Contains(origins, "*") {
		r.Use(allowAnyOrigin)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     origins,
		AllowedMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type"},
		OptionsPassthrough: true,
	}))
	r.Use(middleware.Metrics)

	r.Options("/*", Preflight)

	r.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}
		r.Post("/api/whysubscribe", survey.Handle)
		r.Post("/*", subscribe.Handle)
	})

	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(methodNotAllowed)

	return r
}

// Preflight answers every CORS preflight with a fixed 204. The origin
// header is left to the cors middleware.
func Preflight(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}
