package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/gcalphotos/gcalphotos/internal/googleauth"
	"github.com/gcalphotos/gcalphotos/internal/instrumentation"
	"github.com/gcalphotos/gcalphotos/internal/logging"
	"github.com/gcalphotos/gcalphotos/internal/router"
	"github.com/gcalphotos/gcalphotos/internal/server"
)

// serveOptions holds the configuration for the serve command.
type serveOptions struct {
	Transport       string
	HTTPAddr        string
	Debug           bool
	CredentialsFile string
	TokenFile       string
	MetricsEnabled  bool
	MetricsAddr     string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Calendar
and Google Photos tools for AI assistants.

The server supports two transport types:
  - stdio: Standard input/output (default, for direct process integration)
  - streamable-http: Streamable HTTP transport on a network address

Credentials come from an OAuth client secret file and a persisted token.
Run "gcalphotos auth" first to complete the interactive consent flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.Transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&opts.CredentialsFile, "credentials-file", "", "Path to the OAuth client secret JSON. Can also use GCALPHOTOS_CREDENTIALS_FILE env var.")
	cmd.Flags().StringVar(&opts.TokenFile, "token-file", "", "Path to the persisted OAuth token. Can also use GCALPHOTOS_TOKEN_FILE env var.")
	cmd.Flags().BoolVar(&opts.MetricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applyServeEnv fills options that were left at their defaults from the
// environment. Flags win over environment variables.
func applyServeEnv(opts serveOptions) serveOptions {
	if opts.CredentialsFile == "" {
		opts.CredentialsFile = os.Getenv("GCALPHOTOS_CREDENTIALS_FILE")
	}
	if opts.TokenFile == "" {
		opts.TokenFile = os.Getenv("GCALPHOTOS_TOKEN_FILE")
	}
	if opts.MetricsEnabled {
		if os.Getenv("METRICS_ENABLED") == "false" {
			opts.MetricsEnabled = false
		}
	}
	if opts.MetricsAddr == "" || opts.MetricsAddr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.MetricsAddr = addr
		}
	}
	return opts
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts = applyServeEnv(opts)

	// All logging goes to stderr so the stdio transport keeps stdout clean.
	logging.Setup(opts.Debug)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.Transport != "stdio" && opts.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.MetricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm the metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			slog.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// provider.Metrics() is a safe no-op recorder when instrumentation is off.
	store := googleauth.NewStore(opts.CredentialsFile, opts.TokenFile,
		googleauth.WithMetrics(provider.Metrics()),
	)
	slog.Info("using Google credentials",
		"credentials_file", store.CredentialsFile(),
		"token_file", store.TokenFile())

	// Credentials are loaded lazily on the first tool call, but a missing
	// client secret file is almost always a setup mistake worth flagging now.
	if _, err := os.Stat(store.CredentialsFile()); err != nil {
		slog.Warn("OAuth client secret file not found, tool calls will fail until it exists",
			"path", store.CredentialsFile())
	}

	rt := router.New(
		router.DefaultRegistry(),
		store,
		server.NewSessionBuilder(shutdownCtx, store, provider.Metrics()),
	)

	serverContext, err := server.NewServerContext(shutdownCtx, rt)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Set metrics on the server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			slog.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("gcalphotos", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := server.RegisterTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	switch opts.Transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		slog.Info("starting MCP server", "transport", opts.Transport, "addr", opts.HTTPAddr)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, opts.HTTPAddr)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr string) error {
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamable)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
