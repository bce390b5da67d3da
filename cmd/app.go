// Package cmd implements the wm command line: serving the platform and
// maintaining its database.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"go.uber.org/zap"

	"github.com/sri-akshat/wealth-manager/api"
	"github.com/sri-akshat/wealth-manager/auth"
	"github.com/sri-akshat/wealth-manager/basic"
	"github.com/sri-akshat/wealth-manager/config"
	"github.com/sri-akshat/wealth-manager/gateway"
	"github.com/sri-akshat/wealth-manager/investments"
	"github.com/sri-akshat/wealth-manager/logging"
	"github.com/sri-akshat/wealth-manager/nav"
	"github.com/sri-akshat/wealth-manager/store"
	"github.com/sri-akshat/wealth-manager/users"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", os.Getenv(EnvConfig), "Path to the YAML configuration file")
var logLevel = flag.String("log-level", "", "Overrides the configured log level")

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "platform")
	c.Register(&openapiCmd{}, "platform")
	c.Register(&checkOpenAPICmd{}, "platform")

	c.Register(&migrateCmd{}, "database")
	c.Register(&seedCmd{}, "database")

	c.Register(&tokenCmd{}, "users")
	c.Register(&summaryCmd{}, "users")
}

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	services := predict.Set(ServiceNames)
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":    predict.Files("*.yaml"),
			"log-level": predict.Set{"debug", "info", "warn", "error"},
		},
		Sub: map[string]*complete.Command{
			"serve":         {Flags: map[string]complete.Predictor{"service": services, "split": predict.Nothing}},
			"openapi":       {Flags: map[string]complete.Predictor{"dir": predict.Dirs("*"), "format": predict.Set{"json", "yaml"}}},
			"check-openapi": {Args: predict.Files("*")},
			"migrate":       {},
			"seed":          {},
			"token":         {Flags: map[string]complete.Predictor{"email": predict.Something, "role": predict.Set{"customer", "admin", "distributor"}, "ttl": predict.Something}},
			"summary":       {Flags: map[string]complete.Predictor{"email": predict.Something}},
		},
	}
}

// loadConfig reads the configuration named by the -config flag.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return cfg, err
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	return cfg, nil
}

// app holds what every command works with.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
}

// openApp loads the configuration and opens the database. The returned app
// must be closed.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: st}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.logger.Sync()
}

// fail reports err on stderr.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// ServiceNames are the names accepted by serve -service, in mount order.
var ServiceNames = []string{"investment", "user", "transaction", "kyc", "admin", "notification", "gateway"}

// services builds every service on the app store, keyed by ServiceNames.
func (a *app) services() (map[string]*api.Service, error) {
	issuer, err := auth.NewIssuer(a.cfg.JWTSecret, a.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	var provider nav.Provider = nav.Static{}
	if a.cfg.NAV.URL != "" {
		h := nav.NewHTTP(a.cfg.NAV.URL, a.cfg.NAV.CacheDir, a.logger)
		h.Path = a.cfg.NAV.JSONPath
		provider = h
	}
	return map[string]*api.Service{
		"investment":   investments.New(a.store, issuer, provider, a.logger).API(),
		"user":         users.New(a.store, issuer, auth.Hasher{}, a.logger).API(),
		"transaction":  basic.Transaction(),
		"kyc":          basic.KYC(),
		"admin":        basic.Admin(),
		"notification": basic.Notification(),
		"gateway":      gateway.Standalone(),
	}, nil
}

// platform mounts the services on one gateway.
func (a *app) platform(svcs map[string]*api.Service) *gateway.Platform {
	return gateway.Default(a.logger,
		svcs["investment"], svcs["user"], svcs["transaction"],
		svcs["kyc"], svcs["admin"], svcs["notification"])
}

// printMarkdown renders markdown for the terminal, or prints it as is when
// it cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
