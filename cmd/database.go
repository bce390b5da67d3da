package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create the database tables" }
func (*migrateCmd) Usage() string {
	return `wm migrate

  Creates the tables and indexes missing from the configured database.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()
	if err := a.store.Migrate(ctx); err != nil {
		return fail("%v", err)
	}
	fmt.Printf("%s database is up to date\n", a.store.Dialect())
	return subcommands.ExitSuccess
}

type seedCmd struct{}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "install the sample mutual funds" }
func (*seedCmd) Usage() string {
	return `wm seed

  Installs the sample mutual funds, unless the database already has funds.
`
}

func (*seedCmd) SetFlags(*flag.FlagSet) {}

func (*seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()
	if err := a.store.Migrate(ctx); err != nil {
		return fail("%v", err)
	}
	seeded, err := a.store.Funds.SeedSamples(ctx)
	if err != nil {
		return fail("%v", err)
	}
	if !seeded {
		fmt.Println("funds already exist, nothing to do")
		return subcommands.ExitSuccess
	}
	funds, err := a.store.Funds.List(ctx)
	if err != nil {
		return fail("%v", err)
	}
	for _, f := range funds {
		fmt.Printf("%d\t%s\t%s\t%s\n", f.ID, f.SchemeCode, f.Category, f.NAV)
	}
	return subcommands.ExitSuccess
}
