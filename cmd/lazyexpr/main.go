// Package main is the entry point for the lazyexpr CLI and server.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/lazyexpr/pkg/config"
	"github.com/lemonberrylabs/lazyexpr/pkg/expr"
	"github.com/lemonberrylabs/lazyexpr/pkg/service"
	"github.com/lemonberrylabs/lazyexpr/pkg/store"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:          "lazyexpr",
	Short:        "Lazy expression evaluator",
	SilenceUsage: true,
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a single expression",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate expressions interactively, keeping variables between lines",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP evaluation service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("lazyexpr version {{.Version}}\n")

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	evalCmd.Flags().StringArray("var", nil, "Pre-bound variable as name=value (repeatable)")
	serveCmd.Flags().String("listen", "", "Bind address (overrides config)")
	serveCmd.Flags().String("store", "", "SQLite history database path (overrides config)")

	rootCmd.AddCommand(evalCmd, replCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newExpression builds an expression configured per cfg, logging to stderr.
func newExpression(cfg *config.Config, src string) *expr.Expression {
	e := expr.New(src)
	e.SetPrecision(cfg.Precision)
	e.SetLegacyInequality(cfg.LegacyInequality)
	for name, text := range cfg.Variables {
		e.SetVariableText(name, text)
	}
	e.SetLogger(func(line string) { fmt.Fprintln(os.Stderr, line) })
	return e
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	e := newExpression(cfg, args[0])
	vars, _ := cmd.Flags().GetStringArray("var")
	for _, kv := range vars {
		name, text, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --var %q, want name=value", kv)
		}
		e.SetVariableText(name, text)
	}

	v, err := e.Eval()
	if err != nil {
		return err
	}
	fmt.Println(v.String())
	return nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// bindings survive between lines; seeded constants are re-created
	// by every expression and need no carrying
	vars := make(map[string]expr.LazyValue)
	seeded := map[string]bool{"e": true, "PI": true, "TRUE": true, "FALSE": true, "NULL": true}

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == "vars" {
			printVars(vars)
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		e := newExpression(cfg, line)
		for name, lv := range vars {
			e.Env().Set(name, lv)
		}
		v, err := e.Eval()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		for _, name := range e.Env().Names() {
			if seeded[name] {
				continue
			}
			if lv, ok := e.Env().Get(name); ok {
				vars[name] = lv
			}
		}
		fmt.Println(v.String())
	}
	return in.Err()
}

func printVars(vars map[string]expr.LazyValue) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := vars[name].Force()
		if err != nil {
			fmt.Printf("%s = error: %v\n", name, err)
			continue
		}
		fmt.Printf("%s = %s\n", name, v.String())
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.Listen = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StorePath = v
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var st store.Store
	if cfg.StorePath != "" {
		st, err = store.NewSQLite(cfg.StorePath)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		logger.Info().Str("path", cfg.StorePath).Msg("using SQLite history store")
	} else {
		st = store.NewMemory()
		logger.Info().Msg("using in-memory history store")
	}
	defer st.Close()

	srv := service.New(st, cfg, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info().Msg("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	logger.Info().Str("addr", cfg.Listen).Msg("listening")
	return srv.Listen(cfg.Listen)
}
