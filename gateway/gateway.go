// Package gateway serves every service of the platform behind one router.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sri-akshat/wealth-manager/api"
	"github.com/sri-akshat/wealth-manager/openapi"
)

const (
	Title   = "Wealth Manager"
	Version = "1.0.0"

	// DefaultProbeTimeout bounds each service health probe.
	DefaultProbeTimeout = 2 * time.Second
)

// Standalone returns the gateway service answering its own health check only.
func Standalone() *api.Service {
	return &api.Service{
		Name:    "gateway",
		Title:   "API Gateway",
		Version: Version,
		Tags:    []api.Tag{{Name: "system", Description: "System maintenance operations"}},
		Routes: []api.Route{
			{Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"system"},
				Response: api.HealthResponse{},
				Handler: func(w http.ResponseWriter, _ *http.Request) {
					api.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "healthy", Service: "gateway"})
				}},
		},
	}
}

// Mount places a service under a path prefix. Key names the service in the
// platform health report.
type Mount struct {
	Key     string
	Prefix  string
	Service *api.Service
}

// Health is the body of the platform health check.
type Health struct {
	Status   string            `json:"status" doc:"healthy, or degraded when a service is down"`
	Services map[string]string `json:"services" doc:"up or down, by service"`
}

// Platform mounts the services of the wealth manager.
type Platform struct {
	Mounts       []Mount
	ProbeTimeout time.Duration
	logger       *zap.Logger
}

// New returns a platform serving mounts.
func New(logger *zap.Logger, mounts ...Mount) *Platform {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Platform{Mounts: mounts, ProbeTimeout: DefaultProbeTimeout, logger: logger.Named("gateway")}
}

// Default lays out the platform services at their usual prefixes.
func Default(logger *zap.Logger, investments, users, transactions, kyc, admin, notifications *api.Service) *Platform {
	return New(logger,
		Mount{Key: "investment", Prefix: "/investments", Service: investments},
		Mount{Key: "user", Prefix: "/users", Service: users},
		Mount{Key: "transaction", Prefix: "/transactions", Service: transactions},
		Mount{Key: "kyc", Prefix: "/kyc", Service: kyc},
		Mount{Key: "admin", Prefix: "/admin", Service: admin},
		Mount{Key: "notification", Prefix: "/notifications", Service: notifications},
	)
}

// API declares the routes the platform serves itself.
func (p *Platform) API() *api.Service {
	return &api.Service{
		Name:        "wealth-manager",
		Title:       Title,
		Description: "Wealth Manager Platform - All Services",
		Version:     Version,
		Tags:        []api.Tag{{Name: "system", Description: "System maintenance operations"}},
		Routes: []api.Route{
			{Method: http.MethodGet, Path: "/health", Summary: "Platform health check", Tags: []string{"system"},
				Description: "Probes every mounted service.",
				Response:    Health{}, Handler: p.health},
		},
	}
}

// Handler routes each prefix to its service handler and everything else to
// the platform routes.
func (p *Platform) Handler(opts api.Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	r := chi.NewRouter()
	r.Use(api.Recoverer(opts.Logger))
	for _, m := range p.Mounts {
		r.Mount(m.Prefix, m.Service.Handler(opts))
	}
	r.Mount("/", p.API().Handler(opts))
	return r
}

// Probe reports each mounted service as up or down.
func (p *Platform) Probe(ctx context.Context) Health {
	status := make([]string, len(p.Mounts))
	var g errgroup.Group
	for i, m := range p.Mounts {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, p.ProbeTimeout)
			defer cancel()
			status[i] = "up"
			if err := m.Service.Ping(ctx); err != nil {
				p.logger.Warn("service probe failed", zap.String("service", m.Key), zap.Error(err))
				status[i] = "down"
			}
			return nil
		})
	}
	g.Wait()

	h := Health{Status: "healthy", Services: make(map[string]string, len(p.Mounts))}
	for i, m := range p.Mounts {
		h.Services[m.Key] = status[i]
		if status[i] != "up" {
			h.Status = "degraded"
		}
	}
	return h
}

func (p *Platform) health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, p.Probe(r.Context()))
}

// Document merges the documents of the platform and of every mounted service.
func (p *Platform) Document() (openapi.Document, error) {
	self := p.API()
	mounts := []openapi.Mount{{Document: openapi.Generate(self)}}
	for _, m := range p.Mounts {
		mounts = append(mounts, openapi.Mount{Prefix: m.Prefix, Document: openapi.Generate(m.Service)})
	}
	return openapi.Merge(openapi.Info{
		Title:       self.Title,
		Description: self.Description,
		Version:     self.Version,
		Contact:     openapi.DefaultContact,
		License:     openapi.DefaultLicense,
	}, mounts...)
}
