// Command wordscope serves and queries the Wordstat-style keyword
// statistics API through a rate-limited, tree-caching access layer.
//
// Usage:
//
//	wordscope serve --config config.yaml          # MCP stdio tool server
//	wordscope http --config config.yaml           # REST facade
//	wordscope regions --depth 2
//	wordscope query "winter tires" --regions 225 --limit 10
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	mcpserver "github.com/mark3labs/mcp-go/server"

	wordscope "github.com/wordscope/wordscope"
	"github.com/wordscope/wordscope/pkg/config"
	"github.com/wordscope/wordscope/pkg/logger"
	"github.com/wordscope/wordscope/pkg/ratelimit"
	"github.com/wordscope/wordscope/pkg/regions"
	"github.com/wordscope/wordscope/pkg/server"
	"github.com/wordscope/wordscope/pkg/stats"
	"github.com/wordscope/wordscope/pkg/wordstat"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Serve   ServeCmd   `cmd:"" help:"Serve the MCP stdio tool surface."`
	HTTP    HTTPCmd    `cmd:"" name:"http" help:"Serve the REST facade."`
	Regions RegionsCmd `cmd:"" help:"Print the region taxonomy projection."`
	Query   QueryCmd   `cmd:"" help:"Run an enriched regional distribution query."`

	Config   string `short:"c" help:"Path to config file." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:""`
}

// buildService loads config, initializes logging, and wires the access
// layer: limiter → client → cache → service.
func (c *CLI) buildService() (*stats.Service, *config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, nil, err
	}

	levelStr := cfg.Logging.Level
	if c.LogLevel != "" {
		levelStr = c.LogLevel
	}
	level, _ := logger.ParseLevel(levelStr)
	logger.Init(level, os.Stderr)
	log := logger.GetLogger()

	limiter, err := ratelimit.NewSlidingWindow(ratelimit.Config{
		Limit: cfg.RateLimit.RequestsPerSecond,
	})
	if err != nil {
		return nil, nil, err
	}

	client := wordstat.New(cfg.API.BaseURL, cfg.API.Token, limiter,
		wordstat.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		wordstat.WithLogger(log),
	)
	cache := regions.NewCache(client.RegionsTree)

	return stats.NewService(client, cache, log), cfg, nil
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(wordscope.Build().String())
	return nil
}

// ServeCmd runs the MCP stdio tool server.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	svc, _, err := cli.buildService()
	if err != nil {
		return err
	}
	s := server.NewMCPServer(svc, wordscope.Version)
	return mcpserver.ServeStdio(s)
}

// HTTPCmd runs the REST facade.
type HTTPCmd struct {
	Addr string `help:"Listen address (overrides config)."`
}

func (c *HTTPCmd) Run(cli *CLI) error {
	svc, cfg, err := cli.buildService()
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	log := logger.GetLogger()
	log.Info("serving REST facade", "addr", addr)
	return http.ListenAndServe(addr, server.NewRouter(svc, log))
}

// RegionsCmd prints the region taxonomy projection.
type RegionsCmd struct {
	Depth int `help:"Levels to include, root = 1." default:"2"`
}

func (c *RegionsCmd) Run(cli *CLI) error {
	svc, _, err := cli.buildService()
	if err != nil {
		return err
	}

	forest, err := svc.RegionsProjection(contextForCommand(), c.Depth)
	if err != nil {
		return err
	}
	return printJSON(forest)
}

// QueryCmd runs an enriched regional distribution query.
type QueryCmd struct {
	Phrase  string   `arg:"" help:"Keyword or phrase to query."`
	Regions []int64  `help:"Scope results to these region ids and their descendants."`
	Devices []string `help:"Device filter (all, desktop, mobile, phone, tablet)."`
	Limit   int      `help:"Maximum number of ranked rows." default:"10"`
}

func (c *QueryCmd) Run(cli *CLI) error {
	svc, _, err := cli.buildService()
	if err != nil {
		return err
	}

	report, err := svc.EnrichedRegionalDistribution(contextForCommand(), c.Phrase, c.Regions, c.Devices, c.Limit)
	if err != nil {
		return err
	}
	return printJSON(report)
}

// contextForCommand is the root context for one-shot commands.
// Cancellation beyond Ctrl-C killing the process is not needed here.
func contextForCommand() context.Context {
	return context.Background()
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("wordscope"),
		kong.Description("Rate-limited access layer for a keyword statistics API with a region taxonomy."),
		kong.UsageOnError(),
	)
	if err := kctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
