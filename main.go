// Command pong-arena starts the Pong game session coordinator.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, the
//     WebSocket transport, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if
//     none is available
//
// Flags control host/port, the maps directory, the history database, debug
// logging, and optional ngrok tunneling for easy external access during
// development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/frfrance/pong-arena/api"
	"github.com/frfrance/pong-arena/game/config"
	"github.com/frfrance/pong-arena/game/history"
	"github.com/frfrance/pong-arena/game/match"
	"github.com/frfrance/pong-arena/game/service"
	"github.com/frfrance/pong-arena/game/session"
	"github.com/frfrance/pong-arena/transport/mcp"
	"github.com/frfrance/pong-arena/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pong Arena Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cmd := &cli.Command{
		Name:    "pong-arena",
		Usage:   "real-time Pong session coordinator",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "maps-dir",
				Value:   "maps",
				Usage:   "Directory containing map definitions (empty for built-ins only)",
				Sources: cli.EnvVars("MAPS_DIR"),
			},
			&cli.StringFlag{
				Name:    "db",
				Value:   "pong.db",
				Usage:   "SQLite match history database path",
				Sources: cli.EnvVars("PONG_DB"),
			},
			&cli.StringFlag{
				Name:    "history-dir",
				Usage:   "Store match history as JSON files in this directory instead of SQLite",
				Sources: cli.EnvVars("HISTORY_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server with REST API, WebSocket transport and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runServe(cmd)
				},
			},
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server backed by the REST API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(cmd)
				},
			},
		},
		// Bare invocation serves.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServe(cmd)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// buildServices wires the game core: presence registry, match coordinator,
// session directory, map catalog, match recorder, WebSocket hub.
func buildServices(cmd *cli.Command) (service.GameService, *websocket.Hub, error) {
	mapsDir := cmd.String("maps-dir")
	if mapsDir != "" {
		if err := os.MkdirAll(mapsDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create maps directory: %w", err)
		}
	}
	maps, err := config.NewManager(mapsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create map catalog: %w", err)
	}

	var recorder history.Recorder
	if dir := cmd.String("history-dir"); dir != "" {
		recorder, err = history.NewFileStore(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file history store: %w", err)
		}
		log.Printf("Match history: JSON files in %s", dir)
	} else {
		recorder, err = history.OpenSQLite(cmd.String("db"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history database: %w", err)
		}
		log.Printf("Match history: SQLite at %s", cmd.String("db"))
	}

	registry := match.NewRegistry()
	hub := websocket.NewHub()
	svc := service.NewGameService(registry, match.NewCoordinator(registry),
		session.NewManager(), maps, recorder, hub)
	hub.Bind(svc)

	return svc, hub, nil
}

// runServe starts the HTTP server with the REST API, the WebSocket hub and
// an /mcp proxy endpoint. If ngrok is enabled it also provisions a public
// tunnel.
func runServe(cmd *cli.Command) error {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	log.Printf("Starting %s v%s", AppName, Version)

	svc, hub, err := buildServices(cmd)
	if err != nil {
		return err
	}

	apiServer := api.NewServer(svc, hub)
	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))

	// MCP endpoint proxying through the local REST API
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
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

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?user=<id>&login=<login>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd, mainRouter)
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runNgrokTunnel serves the same router through a public ngrok endpoint.
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?user=<id>&login=<login>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an external API at
// http://localhost:8080 when one is up; otherwise it starts a minimal
// internal HTTP API on a random loopback port and targets that.
func runStdioMCP(cmd *cli.Command) error {
	var baseURL string

	externalURL := fmt.Sprintf("http://localhost:%d", cmd.Int("port"))
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		svc, hub, err := buildServices(cmd)
		if err != nil {
			return err
		}
		apiServer := api.NewServer(svc, hub)

		httpServer := &http.Server{Handler: apiServer}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		// Give the listener a moment to accept
		time.Sleep(100 * time.Millisecond)
		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
