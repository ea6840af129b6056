// Command stagecraft screenshots a reveal.js presentation in Chrome and
// turns the capture into PDF, PPTX or HTML handout documents.
//
// Usage:
//
//	stagecraft export --url http://127.0.0.1:8000/local-reveal.html
//	stagecraft generate-pdf deck.pdf
//	stagecraft generate-pptx -f stagecraft.json
//	stagecraft serve --addr 127.0.0.1:8080
//	stagecraft mcp
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hazyhaar/stagecraft/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "stagecraft",
	Short: "Screenshot reveal.js presentations and create PPTX, PDF or HTML handouts",
	Long: `stagecraft drives a headless Chrome through a reveal.js presentation,
one fragment at a time, and records every screenshot with the speaker notes
and link positions of its slide.

The export command writes that record (stagecraft.json by default). The
generate-* commands turn a record into documents; serve previews it in a
browser and mcp exposes the generators as MCP tools over stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := newLogger(level, format)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./stagecraft.yaml or ~/.config/stagecraft/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text, json")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("stagecraft")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "stagecraft"))
		}
	}

	viper.SetEnvPrefix("STAGECRAFT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// loadConfig decodes the viper configuration after applying the flags of
// cmd that were set explicitly. flags maps a flag name to its config key.
func loadConfig(cmd *cobra.Command, flags map[string]string) (*config.Config, error) {
	for name, key := range flags {
		f := cmd.Flags().Lookup(name)
		if f != nil && f.Changed {
			viper.Set(key, f.Value.String())
		}
	}
	return config.Load(viper.GetViper())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("stagecraft: fatal", "error", err)
		stop()
		os.Exit(1)
	}
}
