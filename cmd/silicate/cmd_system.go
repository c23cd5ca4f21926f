package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"silicate/internal/crypto"
	"silicate/internal/web"
)

var (
	waitFor time.Duration
	guiAddr string
)

// healthCmd checks that the API answers
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API is up",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

// keygenCmd writes a token encryption key
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the key used with --token-encryption",
	Long: `Generate a random 32 byte key, hex encoded, into the token key file
(token_key_file, default <state dir>/token.key). An existing file is never
overwritten. Without a key file the token key is derived from the machine's
hardware identifier.`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

// guiCmd serves the local web GUI
var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Serve the web GUI on a local address",
	Args:  cobra.NoArgs,
	RunE:  runGUI,
}

func init() {
	healthCmd.Flags().DurationVar(&waitFor, "wait", 0, "keep polling with backoff for up to this long")
	guiCmd.Flags().StringVar(&guiAddr, "addr", "", "listen address (default gui_addr)")
}

func runHealth(cmd *cobra.Command, args []string) error {
	if waitFor > 0 {
		if err := client.WaitReady(cmd.Context(), waitFor); err != nil {
			return err
		}
	}
	health, err := client.Health(cmd.Context())
	if err != nil {
		return err
	}
	status := "up"
	if health != nil && health.Status != "" {
		status = health.Status
	}
	success(fmt.Sprintf("%s is %s", client.BaseURL(), status))
	return nil
}

func runKeygen(cmd *cobra.Command, args []string) error {
	path := cfg.KeyFile()
	if _, err := crypto.GenerateKeyFile(path); err != nil {
		if errors.Is(err, crypto.ErrKeyExists) {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		return err
	}
	success(fmt.Sprintf("token key written to %s", path))
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	addr := guiAddr
	if addr == "" {
		addr = cfg.GUIAddr
	}
	srv, err := web.New(client, logger)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-cmd.Context().Done()
		server.Close()
	}()
	logger.Info("serving GUI", zap.String("url", "http://"+addr), zap.String("server", cfg.Server))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
