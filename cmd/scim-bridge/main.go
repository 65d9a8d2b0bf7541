// Command scim-bridge runs the SCIM 2.0 provisioning endpoint in front of a
// Gitea instance.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/magodo/slog2hclog"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/internal/server"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/internal/translator"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/clients/gitea"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/config"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/utils/tlsconfig"
)

func getLogger(level string) hclog.Logger {
	logLevel := new(slog.LevelVar)

	switch level {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "warn":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
	}

	return slog2hclog.New(slog.Default(), logLevel)
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	logger := getLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("bridge terminated", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger hclog.Logger) error {
	giteaToken, err := cfg.Gitea.ResolveToken()
	if err != nil {
		return err
	}

	authToken, err := cfg.Auth.ResolveToken()
	if err != nil {
		return err
	}

	tlsConfig, err := backendTLS(&cfg.Gitea)
	if err != nil {
		return err
	}

	client, err := gitea.NewClient(gitea.Options{
		BaseURL: cfg.Gitea.BaseURL,
		Token:   giteaToken,
		TLS:     tlsConfig,
	}, logger.Named("gitea"))
	if err != nil {
		return err
	}

	t := translator.New(client,
		cfg.Provisioning.DefaultTeamUnits,
		cfg.Provisioning.UserVisibility,
		logger.Named("translator"))

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.New(t, authToken, logger.Named("server")),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("listening", "address", cfg.Server.Address)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// backendTLS builds the TLS settings for the Gitea connection. Plain HTTP
// backends need none.
func backendTLS(g *config.Gitea) (*tls.Config, error) {
	var opts []tlsconfig.Option

	if g.CAPath != "" {
		opts = append(opts, tlsconfig.WithCA(g.CAPath))
	}

	if g.InsecureSkipVerify {
		opts = append(opts, tlsconfig.WithInsecureSkipVerify())
	}

	if len(opts) == 0 {
		return nil, nil
	}

	return tlsconfig.NewTLSConfig(opts...)
}
