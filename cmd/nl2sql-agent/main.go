/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nl2sql-agent/internal/api"
	"nl2sql-agent/internal/chat"
	"nl2sql-agent/internal/config"
	"nl2sql-agent/internal/database"
	"nl2sql-agent/internal/logging"
)

var (
	configFile string
	envFiles   []string
	flags      config.CLIFlags
)

var rootCmd = &cobra.Command{
	Use:   "nl2sql-agent",
	Short: "pgEdge Natural Language Agent - Answer questions with SQL",
	Long: `nl2sql-agent turns natural-language questions into SQL.

Table metadata is retrieved from a vector index by similarity to the
question, and a language model writes a SELECT statement against those
tables. Statements can optionally be executed against configured Oracle or
PostgreSQL databases and the results summarised.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return config.LoadEnvFiles(envFiles...)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	pf.StringSliceVar(&envFiles, "env-file", nil, "Environment files to load (default: .env)")
	pf.StringVar(&flags.LLMProvider, "llm-provider", "", "LLM provider (azure, openai, anthropic, ollama)")
	pf.StringVar(&flags.EmbeddingProvider, "embedding-provider", "", "Embedding provider (tei, openai, ollama)")
	pf.StringVar(&flags.VectorBackend, "vector-backend", "", "Vector store backend (qdrant, sqlite)")
	pf.StringVar(&flags.Collection, "collection", "", "Vector store collection holding table metadata")
	pf.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(), newAskCmd(), newChatCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config path and loads configuration with the
// flags that were set on the command line
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	pf := cmd.Flags()
	flags.ConfigFileSet = pf.Changed("config")
	flags.LLMProviderSet = pf.Changed("llm-provider")
	flags.EmbeddingProviderSet = pf.Changed("embedding-provider")
	flags.VectorBackendSet = pf.Changed("vector-backend")
	flags.CollectionSet = pf.Changed("collection")
	flags.LogLevelSet = pf.Changed("log-level")
	flags.HTTPAddrSet = pf.Changed("http-addr")
	flags.TLSEnabledSet = pf.Changed("tls")
	flags.TLSCertSet = pf.Changed("tls-cert")
	flags.TLSKeySet = pf.Changed("tls-key")

	path := configFile
	if path == "" {
		exePath, err := os.Executable()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get executable path: %w", err)
		}
		path = config.GetDefaultConfigPath(exePath)
	}
	flags.ConfigFile = path

	cfg, err := config.LoadConfig(path, flags)
	if err != nil {
		return nil, "", err
	}

	if level, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logging.SetLevel(level)
	}
	if !config.ConfigFileExists(path) {
		path = ""
	}
	return cfg, path, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			c, err := buildComponents(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			var lister api.DatabaseLister
			if c.clients != nil {
				lister = c.clients
				reloadable := config.NewReloadableConfig(cfg, path, flags)
				reloadable.OnReload(func(newCfg *config.Config) {
					c.clients.UpdateDatabaseConfigs(newCfg.Databases)
				})
				if path != "" {
					watcher, err := config.WatchConfig(reloadable)
					if err != nil {
						logging.Warn("config_watch_failed", "path", path, "error", err)
					} else {
						watcher.Start()
						defer watcher.Stop()
					}
				}
			}

			server := api.NewServer(cfg.HTTP, api.NewHandler(c.agent, lister))

			ctx, stop := signalContext()
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Run()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logging.Info("http_server_stopping")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVarP(&flags.HTTPAddr, "http-addr", "a", "", "HTTP server address")
	cmd.Flags().BoolVar(&flags.TLSEnabled, "tls", false, "Enable TLS/HTTPS")
	cmd.Flags().StringVar(&flags.TLSCertFile, "tls-cert", "", "Path to TLS certificate file")
	cmd.Flags().StringVar(&flags.TLSKeyFile, "tls-key", "", "Path to TLS key file")
	return cmd
}

func newAskCmd() *cobra.Command {
	var dbName string
	var execute bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Generate SQL for a single question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			c, err := buildComponents(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			if execute && c.clients == nil {
				return fmt.Errorf("--execute requires at least one configured database")
			}

			ctx, stop := signalContext()
			defer stop()

			answer := c.agent.Ask(ctx, args[0], dbName, execute)
			if !answer.Outcome.OK() {
				return fmt.Errorf("%s", answer.Outcome.UserMessage())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, answer.Outcome.SQL)
			if !answer.Executed {
				return nil
			}
			if answer.Err != nil {
				return answer.Err
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, chat.ResultMarkdown(answer.Result, -1))
			fmt.Fprintln(out)
			fmt.Fprintln(out, answer.Summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dbName, "database", "d", "", "Database to execute against (default: first configured)")
	cmd.Flags().BoolVarP(&execute, "execute", "x", false, "Execute the generated statement")
	return cmd
}

func newChatCmd() *cobra.Command {
	var opts chat.Options

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			c, err := buildComponents(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			if opts.HistoryFile == "" {
				if home, err := os.UserHomeDir(); err == nil {
					opts.HistoryFile = filepath.Join(home, ".nl2sql-agent-history")
				}
			}

			var lister chat.DatabaseLister
			if c.clients != nil {
				lister = c.clients
			}
			if opts.Database != "" && (lister == nil || !lister.HasDatabase(opts.Database)) {
				return fmt.Errorf("database '%s' is not configured", opts.Database)
			}

			ctx, stop := signalContext()
			defer stop()

			return chat.NewClient(c.agent, lister, opts).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.HistoryFile, "history", "", "History file (default: ~/.nl2sql-agent-history)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.RenderMarkdown, "markdown", true, "Render SQL and results as markdown")
	cmd.Flags().BoolVarP(&opts.Execute, "execute", "x", true, "Execute generated statements when a database is configured")
	cmd.Flags().StringVarP(&opts.Database, "database", "d", "", "Database to execute against (default: first configured)")
	return cmd
}

// Ensure the client manager satisfies both listing interfaces
var (
	_ api.DatabaseLister  = (*database.ClientManager)(nil)
	_ chat.DatabaseLister = (*database.ClientManager)(nil)
)
