// Command connectfour starts the Connect Four server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (and an optional .env file); flags
// override host/port, debug logging and ngrok tunneling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/connectfour/api"
	"github.com/wricardo/mcp-training/connectfour/game/config"
	"github.com/wricardo/mcp-training/connectfour/game/service"
	"github.com/wricardo/mcp-training/connectfour/game/session"
	"github.com/wricardo/mcp-training/connectfour/logging"
	"github.com/wricardo/mcp-training/connectfour/telemetry"
	"github.com/wricardo/mcp-training/connectfour/transport/mcp"
	"github.com/wricardo/mcp-training/connectfour/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Connect Four Server"
)

const shutdownTimeout = 10 * time.Second

// runFunc runs one mode of the server
type runFunc func(ctx context.Context, settings *config.Settings) error

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newCommand(settings, runHTTPServer, runStdioMCP)
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newCommand builds the CLI. Flag defaults come from settings and flags
// given on the command line are written back before a mode runs.
func newCommand(settings *config.Settings, serve, stdio runFunc) *cli.Command {
	withFlags := func(run runFunc) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			applyFlags(cmd, settings)
			if err := settings.Validate(); err != nil {
				return err
			}
			return run(ctx, settings)
		}
	}

	return &cli.Command{
		Name:    "connectfour",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: settings.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: settings.Port, Usage: "HTTP server port"},
			&cli.BoolFlag{Name: "debug", Value: settings.Debug, Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Value: settings.Ngrok.Enabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-domain", Value: settings.Ngrok.Domain, Usage: "Custom ngrok domain (optional)"},
		},
		Action: withFlags(serve),
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  withFlags(serve),
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, starting an internal HTTP server if none is reachable",
				Action:  withFlags(stdio),
			},
		},
	}
}

// applyFlags copies command line flags into settings
func applyFlags(cmd *cli.Command, settings *config.Settings) {
	settings.Host = cmd.String("host")
	settings.Port = cmd.Int("port")
	settings.Debug = cmd.Bool("debug")
	settings.Ngrok.Enabled = cmd.Bool("ngrok")
	settings.Ngrok.Domain = cmd.String("ngrok-domain")
}

// initializeServices wires the session registry and the game service
func initializeServices(logger *zap.Logger) (*session.Manager, service.GameService) {
	sessions := session.NewManager(session.WithLogger(logger))
	return sessions, service.NewGameService(sessions, logger)
}

// setupObservability builds the logger and installs tracing
func setupObservability(ctx context.Context, settings *config.Settings, logConfig logging.Config) (*zap.Logger, func(), error) {
	logger, err := logging.New(logConfig)
	if err != nil {
		return nil, nil, err
	}

	shutdownTracing, err := telemetry.Setup(ctx, settings.OTelEndpoint, settings.ServiceName, Version)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return logger, cleanup, nil
}

// newRouter mounts the API and the /mcp JSON-RPC endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, settings *config.Settings) error {
	logger, cleanup, err := setupObservability(ctx, settings, logging.Config{
		Debug:       settings.Debug,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return err
	}
	defer cleanup()

	sessions, gameService := initializeServices(logger)
	hub := websocket.NewHub(
		websocket.WithEventHandler(gameService.Dispatch),
		websocket.WithLogger(logger),
	)
	apiServer := api.NewServer(gameService, hub, logger)
	mcpClient := mcp.NewClient(settings.APIBaseURL(), Version)
	router := newRouter(apiServer, mcpClient)

	addr := settings.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("mode", "serve"))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?game=<key>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		runJanitor(ctx, sessions, settings, logger)
		return nil
	})

	if settings.Ngrok.Enabled {
		g.Go(func() error {
			runNgrok(ctx, settings.Ngrok, router, logger)
			return nil
		})
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

// runJanitor periodically drops games nobody joined within WaitingTTL and
// games nobody touched within IdleTTL
func runJanitor(ctx context.Context, sessions *session.Manager, settings *config.Settings, logger *zap.Logger) {
	ticker := time.NewTicker(settings.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stale := sessions.CleanupStaleWaiting(settings.WaitingTTL)
			idle := sessions.CleanupIdle(settings.IdleTTL)
			if stale+idle > 0 {
				logger.Info("cleaned up games",
					zap.Int("stale_waiting", stale),
					zap.Int("idle", idle),
					zap.Int("remaining", sessions.Count()))
			}
		}
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
// Tunnel failures are logged; the local server keeps running.
func runNgrok(ctx context.Context, settings config.Ngrok, handler http.Handler, logger *zap.Logger) {
	logger = logger.Named("ngrok")
	if settings.AuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (set NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if settings.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("websocket", ngrokURL+"/ws?game=<key>"),
		zap.String("mcp", ngrokURL+"/mcp"))

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// apiReachable reports whether an API answers health checks at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the API on a random loopback port and returns its base URL
func startInternalAPI(ctx context.Context, logger *zap.Logger) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	_, gameService := initializeServices(logger)
	hubCtx, cancelHub := context.WithCancel(ctx)
	hub := websocket.NewHub(
		websocket.WithEventHandler(gameService.Dispatch),
		websocket.WithLogger(logger),
	)
	go hub.Run(hubCtx)

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub, logger)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", zap.Error(err))
		}
	}()

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		cancelHub()
	}
	return "http://" + listener.Addr().String(), stop, nil
}

// runStdioMCP runs an MCP stdio server. It reuses the API at the configured
// base URL when it answers; otherwise it serves an internal API on a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, settings *config.Settings) error {
	// stdout carries the protocol
	logger, cleanup, err := setupObservability(ctx, settings, logging.StdioConfig(settings.Debug))
	if err != nil {
		return err
	}
	defer cleanup()

	baseURL := settings.APIBaseURL()
	if apiReachable(ctx, baseURL) {
		logger.Info("using external API server for MCP", zap.String("url", baseURL))
	} else {
		logger.Info("no external API server found, starting internal HTTP server", zap.String("checked", baseURL))

		internalURL, stop, err := startInternalAPI(ctx, logger)
		if err != nil {
			return err
		}
		defer stop()

		baseURL = internalURL
		logger.Info("internal HTTP server ready", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL, Version)
	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
