package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/rs/zerolog"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	if tryExternalCommand(ctx) {
		return
	}

	uc, err := buildApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "devdaily: %v\n", err)
		os.Exit(1)
	}

	rootCmd := NewRootCmd(version, uc)
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

func buildApp() (*internal.UseCases, error) {
	cfg, err := internal.LoadConfig(os.Getenv("DEVDAILY_CONFIG"))
	if err != nil {
		return nil, err
	}
	return internal.BuildUseCases(cfg, newLogger(cfg)), nil
}

func newLogger(cfg *internal.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func tryExternalCommand(ctx context.Context) bool {
	if len(os.Args) < 2 {
		return false
	}

	cmd := os.Args[1]
	if cmd == "" || cmd[0] == '-' {
		return false
	}

	if _, err := findExternal(cmd); err != nil {
		return false
	}

	if err := executeExternal(ctx, cmd, os.Args[2:], version); err != nil {
		fmt.Fprintf(os.Stderr, "devdaily %s: %v\n", cmd, err)
		os.Exit(1)
	}

	return true
}
