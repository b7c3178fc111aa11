package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/logger"
	"github.com/ironsheep/lane-tools-mcp/internal/pipeline"
	"github.com/ironsheep/lane-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("lane-tools-mcp - MCP server for lane line detection")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lane-tools-mcp                        Serve MCP over stdin/stdout")
	fmt.Println("  lane-tools-mcp batch <in> <out>       Draw lanes on every image in <in>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  LANE_MCP_LOG_LEVEL=debug        Log level (debug, info, warn, error)")
	fmt.Println("  LANE_MCP_<KEY>=<value>          Override any pipeline setting, e.g.")
	fmt.Println("                                  LANE_MCP_CANNY_LOW=40 LANE_MCP_WORKERS=2")
	fmt.Println()
	fmt.Println("In server mode configure it in your MCP client; logs go to stderr.")
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("lane-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	cfg, err := config.FromEnv(os.Environ())
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "batch" {
		if len(os.Args) != 4 {
			usage()
			os.Exit(2)
		}
		os.Exit(runBatch(ctx, cfg, os.Args[2], os.Args[3]))
	}
	if len(os.Args) > 1 {
		fmt.Fprintf(os.Stderr, "unknown argument %q\n", os.Args[1])
		os.Exit(2)
	}

	// Logging goes to stderr (stdout is for MCP protocol)
	log, err := logger.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("lane MCP server starting")

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// runBatch processes a directory and prints the summary as JSON on stdout.
// It returns the process exit code.
func runBatch(ctx context.Context, cfg config.Config, in, out string) int {
	log, err := logger.NewConsole(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 2
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 2
	}

	res, err := p.ProcessDir(ctx, in, out)
	if err != nil {
		log.Error().Err(err).Msg("batch failed")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Error().Err(err).Msg("failed to write summary")
		return 1
	}

	if res.Failed > 0 {
		log.Warn().Int("failed", res.Failed).Msg("some frames could not be processed")
		return 1
	}
	return 0
}
