package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/router-for-me/DynamicUIGenerator/internal/app"
	"github.com/router-for-me/DynamicUIGenerator/internal/config"
	"github.com/router-for-me/DynamicUIGenerator/internal/logging"

	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := run(ctx, os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 0, "server port (overrides PORT and config file)")
	envFile := fs.String("env-file", ".env", "dotenv file loaded before reading the environment")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	if strings.TrimSpace(*envFile) != "" {
		if errEnv := config.LoadDotEnv(*envFile); errEnv != nil {
			return errEnv
		}
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		if errValidate := validatePort(*port); errValidate != nil {
			return errValidate
		}
		cfg.Port = *port
	}

	closer, errLog := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if errLog != nil {
		return errLog
	}
	defer func() { _ = closer.Close() }()

	return app.RunServer(ctx, cfg)
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
