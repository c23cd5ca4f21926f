// Command silicate is the command line client of the Silicate API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"silicate/internal/alert"
	"silicate/internal/apiclient"
	"silicate/internal/config"
	"silicate/internal/httpx"
	"silicate/internal/logx"
	"silicate/internal/session"
)

var (
	// Global flags
	configFile string

	// Set up by PersistentPreRunE
	v      = config.New()
	cfg    config.Config
	logger = zap.NewNop()
	client *apiclient.Client

	// Output, replaced in tests
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "silicate",
	Short: "Command line client for the Silicate controller API",
	Long: `silicate talks to the Silicate controller REST API.

The session token obtained by "silicate login" is kept in the state
directory (~/.silicate by default) and sent as a bearer token by every
authenticated command. Settings come from flags, SILICATE_* environment
variables and an optional config.yaml.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: config.yaml in the state dir or .)")
	pf.String("server", config.DefaultServer, "API base URL (env SILICATE_SERVER)")
	pf.String("state-dir", "", "directory holding the session token (default ~/.silicate)")
	pf.Duration("timeout", config.DefaultTimeout, "HTTP request timeout")
	pf.String("ca-file", "", "extra CA certificate file or directory to trust")
	pf.Bool("token-encryption", false, "encrypt the stored session token")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(signupCmd, loginCmd, whoamiCmd, passwdCmd, orgCmd)
	rootCmd.AddCommand(usersCmd, projectsCmd, healthCmd, keygenCmd, guiCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	loaded, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logger, err = logx.New(cfg.Log)
	if err != nil {
		return err
	}
	client, err = session.NewClient(cfg, logger)
	if err != nil {
		return err
	}
	logger.Debug("client ready", zap.String("server", cfg.Server), zap.String("state_dir", cfg.StateDir))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		alert.DisplayError(alert.Terminal{W: stderr}, errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage prefers the server's own message over the Go error chain.
func errorMessage(err error) string {
	var failed *httpx.ErrRequestFailed
	if errors.As(err, &failed) {
		if msg := failed.Message(); msg != "" {
			return fmt.Sprintf("%s (HTTP %d)", msg, failed.StatusCode)
		}
		return failed.Status
	}
	return err.Error()
}
