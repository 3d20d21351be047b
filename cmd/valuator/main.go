package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"intrinsic-valuator/internal/cli"
	"intrinsic-valuator/internal/config"
	"intrinsic-valuator/internal/logging"
)

func main() {
	// A missing .env is normal; the process environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("VALUATOR_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.LogConfig())

	if err := cli.NewRootCmd(cfg, logger).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
