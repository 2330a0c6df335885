// Package main provides the mudra binary: a touch-free gesture controller
// for 3D model viewers.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ayusman/mudra/internal/config"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "mudra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Touch-free gesture control for 3D viewers",
		Long: `Mudra turns hand landmarks into gestures and viewer intents.

A renderer streams tracker frames over a websocket (or a local camera is
used) and receives rotation, pan and explode/implode/focus/raycast intents.
Intents can also be published over MQTT and bound to external hooks.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultPath(), "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(flags), replayCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}

// load reads the config file and applies the log level override.
func (f *globalFlags) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(f.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if f.logLevel != "" {
		cfg.LogLevel = strings.ToLower(f.logLevel)
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
