package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/sri-akshat/wealth-manager"
	"github.com/sri-akshat/wealth-manager/auth"
	"github.com/sri-akshat/wealth-manager/renderer"
)

type tokenCmd struct {
	email string
	role  string
	ttl   time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue an access token" }
func (*tokenCmd) Usage() string {
	return `wm token -email <email> [-role customer|admin|distributor] [-ttl <duration>]

  Prints a bearer token signed with the configured secret, to call the
  services from scripts.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email of the token subject.")
	f.StringVar(&c.role, "role", string(wealth.Customer), "Role carried by the token.")
	f.DurationVar(&c.ttl, "ttl", 0, "Token lifetime. Defaults to the configured token_ttl.")
}

func (c *tokenCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.email) == "" {
		return fail("-email is required")
	}
	role, err := wealth.ParseRole(c.role)
	if err != nil {
		return fail("%v", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail("invalid configuration: %v", err)
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fail("%v", err)
	}
	ttl := c.ttl
	if ttl <= 0 {
		ttl = issuer.TTL()
	}
	token, err := issuer.IssueFor(c.email, role, ttl)
	if err != nil {
		return fail("%v", err)
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	email string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a user portfolio report" }
func (*summaryCmd) Usage() string {
	return `wm summary -email <email>

  Displays the portfolio report of a user: summary, allocation and
  investments.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email of the portfolio owner.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.email) == "" {
		return fail("-email is required")
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	investments, err := a.store.Investments.ByUser(ctx, auth.UserID(c.email))
	if err != nil {
		return fail("%v", err)
	}
	printMarkdown(renderer.RenderReport(renderer.NewReport(c.email, time.Now(), investments)))
	return subcommands.ExitSuccess
}
