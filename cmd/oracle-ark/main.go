package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/zavodil/oracle-ark/pkg/config"
	"github.com/zavodil/oracle-ark/pkg/engine"
	"github.com/zavodil/oracle-ark/pkg/logging"
	"github.com/zavodil/oracle-ark/pkg/version"
)

var (
	configFile = flag.String("config", "", "Path to optional configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
)

// The engine is a single-invocation process: one JSON request on stdin, one
// JSON envelope on stdout. Logs go to stderr. A malformed or invalid request
// aborts with a non-zero exit and no envelope; every other failure is
// reported inside individual token results.
func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("oracle-ark version %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With("invocation_id", uuid.NewString())

	logger.Info("Starting oracle-ark", "version", version.Version)

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Error("Failed to read input", "error", err)
		os.Exit(1)
	}

	req, err := engine.ParseRequest(input)
	if err != nil {
		logger.Error("Malformed request", "error", err)
		fmt.Fprintf(os.Stderr, "Malformed request: %v\n", err)
		os.Exit(1)
	}

	if err := engine.ValidateRequest(req); err != nil {
		logger.Error("Invalid request", "error", err)
		fmt.Fprintf(os.Stderr, "Invalid request: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(cfg, logger)
	resp := eng.Run(context.Background(), req)

	out, err := engine.EncodeBounded(resp, engine.MaxResponseBytes)
	if err != nil {
		logger.Error("Failed to encode response", "error", err)
		os.Exit(1)
	}

	if _, err := os.Stdout.Write(out); err != nil {
		logger.Error("Failed to write response", "error", err)
		os.Exit(1)
	}

	logger.Info("Done", "tokens", len(resp.Tokens), "bytes", len(out))
}
