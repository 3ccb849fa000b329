package main

import (
	"fmt"
	"os"

	"alyabot/internal/cli"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	logger, err := cli.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Execute(logger); err != nil {
		logger.Error("Command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}
