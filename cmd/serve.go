package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"slices"
	"time"

	"github.com/google/subcommands"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sri-akshat/wealth-manager/api"
)

type serveCmd struct {
	service string
	split   bool
	migrate bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the platform over HTTP" }
func (*serveCmd) Usage() string {
	return `wm serve [-service <name>] [-split] [-migrate]

  Serves every service behind one gateway on the configured addr.

  -service serves a single service on the configured addr instead.
  -split serves each service on its own address (the "services" section of
  the configuration), and the gateway health check on addr.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.service, "service", "", "Serve a single service: investment, user, transaction, kyc, admin, notification or gateway.")
	f.BoolVar(&c.split, "split", false, "Serve every service on its own address.")
	f.BoolVar(&c.migrate, "migrate", true, "Create the database tables before serving.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.service != "" && c.split {
		return fail("-service and -split are exclusive")
	}
	if c.service != "" && !slices.Contains(ServiceNames, c.service) {
		return fail("unknown service %q", c.service)
	}

	a, err := openApp(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()
	if c.migrate {
		if err := a.store.Migrate(ctx); err != nil {
			return fail("%v", err)
		}
	}
	svcs, err := a.services()
	if err != nil {
		return fail("%v", err)
	}
	opts := api.Options{Logger: a.logger, CORSOrigins: a.cfg.CORSOrigins}

	handlers := make(map[string]http.Handler)
	switch {
	case c.split:
		for _, name := range ServiceNames {
			addr := a.cfg.Services[name]
			if name == "gateway" {
				addr = a.cfg.Addr
			}
			if addr == "" {
				return fail("no address configured for service %q", name)
			}
			handlers[addr] = svcs[name].Handler(opts)
		}
	case c.service != "":
		handlers[a.cfg.Addr] = svcs[c.service].Handler(opts)
	default:
		handlers[a.cfg.Addr] = a.platform(svcs).Handler(opts)
	}

	if err := serve(ctx, a.logger, handlers); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

// serve listens on every address until ctx is done, then shuts the servers down.
func serve(ctx context.Context, logger *zap.Logger, handlers map[string]http.Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	for addr, h := range handlers {
		srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			logger.Info("listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		})
	}
	return g.Wait()
}
