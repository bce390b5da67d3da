// Package api holds the HTTP plumbing shared by the services: routes declared
// as data, JSON responses and errors, and the middleware stack.
//
// A Service is both what gets served and what gets documented: the openapi
// package generates a service's document from the same Route values that
// Handler mounts, so the two cannot drift apart.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Tag groups operations in the generated documentation.
type Tag struct {
	Name        string
	Description string
}

// Route declares one operation of a service.
type Route struct {
	Method      string
	Path        string
	Summary     string
	Description string
	Tags        []string

	// Auth requires a bearer token through the service Authenticator.
	Auth bool

	// Request is a value of the JSON body type, Form of the urlencoded body
	// type, and Query of the query parameters type. They are only used to
	// document the route.
	Request any
	Form    any
	Query   any

	// Response is a value of the success body type, Status its status code
	// (200 when zero). Produces overrides the application/json media type.
	Response any
	Status   int
	Produces string

	// Errors lists the documented error statuses.
	Errors []int

	Handler    http.HandlerFunc
	Middleware []func(http.Handler) http.Handler
}

// SuccessStatus returns the status of a successful response.
func (r Route) SuccessStatus() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

// Service describes a microservice: its metadata and routes.
type Service struct {
	Name        string
	Title       string
	Description string
	Version     string
	Tags        []Tag
	Routes      []Route

	// Authenticator wraps the routes declaring Auth.
	Authenticator func(http.Handler) http.Handler

	// Probe reports whether the service dependencies are reachable.
	Probe func(ctx context.Context) error
}

// Options configures the middleware stack of a served Service.
type Options struct {
	Logger      *zap.Logger
	CORSOrigins []string
}

// Handler returns the router serving every declared route.
func (s *Service) Handler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	logger = logger.With(zap.String("service", s.Name))
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(logger))
	r.Use(Recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		Detail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		Detail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	for _, rt := range s.Routes {
		var h http.Handler = rt.Handler
		for i := len(rt.Middleware) - 1; i >= 0; i-- {
			h = rt.Middleware[i](h)
		}
		if rt.Auth && s.Authenticator != nil {
			h = s.Authenticator(h)
		}
		r.Method(rt.Method, rt.Path, h)
	}
	return r
}

// Ping runs the service probe, a service without probe is always up.
func (s *Service) Ping(ctx context.Context) error {
	if s.Probe == nil {
		return nil
	}
	return s.Probe(ctx)
}
