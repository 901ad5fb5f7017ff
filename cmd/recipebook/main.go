// Command recipebook manages a recipe book from the terminal and serves it
// over HTTP.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skryldev/recipebook"
	"github.com/Skryldev/recipebook/config"
	"github.com/Skryldev/recipebook/core"
	"github.com/Skryldev/recipebook/hooks"
)

type app struct {
	configPath string
	logLevel   string
	logFormat  string

	log   core.Logger
	flush func() error
	book  *recipebook.Book
}

func main() {
	a := &app{log: core.NopLogger{}}
	err := a.rootCmd().Execute()
	if cerr := a.close(); cerr != nil {
		a.log.Error("failed to close book", "error", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "recipebook",
		Short:        "Keep recipes and their photos in a local SQLite book",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "override the configured log format: console, json or zap")

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.photoCmd(),
		a.exportCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return root
}

// open loads configuration, builds the logger and opens the book. Commands
// that touch recipes call it first. Logs go to the command's stderr.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	logger, flush, err := hooks.NewLogger(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log, a.flush = logger, flush

	a.book, err = recipebook.Open(cfg,
		recipebook.WithLogger(logger),
		recipebook.WithHooks(hooks.NewLoggingHook(logger)),
	)
	if err != nil {
		return err
	}
	a.log.Debug("book opened", "db", cfg.DatabasePath, "backend", string(cfg.Backend))
	return nil
}

// close releases the book and flushes buffered log output.
func (a *app) close() error {
	var err error
	if a.book != nil {
		err = a.book.Close()
		a.book = nil
	}
	if a.flush != nil {
		// Sync of a terminal can fail with EINVAL.
		_ = a.flush()
		a.flush = nil
	}
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid recipe id %q", s)
	}
	return id, nil
}
