// Command allocctl runs allocator operations against the configured
// database without starting the servers.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"

	"github.com/simaogato/wealthflow-allocator/internal/app"
	"github.com/simaogato/wealthflow-allocator/internal/config"
	"github.com/simaogato/wealthflow-allocator/internal/logger"
)

var (
	configPath = flag.String("config", os.Getenv("ALLOC_CONFIG"), "Path to an optional YAML config file")
	verbose    = flag.Bool("v", false, "Log at info level instead of warn")
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&importCmd{}, "ledger")

	c.Register(&computeCmd{}, "allocations")
	c.Register(&latestCmd{}, "allocations")

	c.Register(&historyCmd{}, "history")
	c.Register(&exportCmd{}, "history")
}

func main() {
	gin.SetMode(gin.ReleaseMode)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// openApp loads the configuration and builds the application
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if !*verbose {
		cfg.Log.Level = "warn"
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, log)
}
