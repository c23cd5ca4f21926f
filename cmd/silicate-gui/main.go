// Command silicate-gui serves the Silicate web GUI on a local address.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"silicate/internal/config"
	"silicate/internal/logx"
	"silicate/internal/session"
	"silicate/internal/web"
)

func main() {
	configFile := flag.String("config", "", "config file")
	addr := flag.String("addr", "", "listen address (default gui_addr)")
	flag.Parse()

	if err := run(*configFile, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configFile, addr string) error {
	cfg, err := config.Load(config.New(), configFile)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.GUIAddr
	}
	logger, err := logx.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := session.NewClient(cfg, logger)
	if err != nil {
		return err
	}
	srv, err := web.New(client, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving GUI", zap.String("url", "http://"+addr), zap.String("server", cfg.Server))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
