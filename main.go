// Command fuel-stations starts the fuel station server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control the listen address, config directory, simulation profile,
// MongoDB connection, and debug logging. Without a MongoDB URI the server
// falls back to in-memory storage, which is fine for local development but
// loses fuel records and wallets on restart.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/openrp/fuel-stations/api"
	"github.com/openrp/fuel-stations/game/config"
	"github.com/openrp/fuel-stations/game/fuel"
	"github.com/openrp/fuel-stations/game/refuel"
	"github.com/openrp/fuel-stations/game/service"
	"github.com/openrp/fuel-stations/game/station"
	"github.com/openrp/fuel-stations/game/world"
	"github.com/openrp/fuel-stations/storage"
	"github.com/openrp/fuel-stations/transport/mcp"
	"github.com/openrp/fuel-stations/transport/websocket"
)

const (
	appName = "fuel-stations"
	version = "1.0.0"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	godotenv.Load()

	cmd := &cli.Command{
		Name:    appName,
		Usage:   "vehicle fuel simulation and refueling server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "localhost:8080",
				Usage:   "HTTP listen address",
				Sources: cli.EnvVars("FUEL_STATIONS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing simulation profiles",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Profile to load (defaults to the config directory's default)",
			},
			&cli.StringFlag{
				Name:    "mongo-uri",
				Usage:   "MongoDB connection URI (empty uses in-memory storage)",
				Sources: cli.EnvVars("MONGO_URI"),
			},
			&cli.StringFlag{
				Name:    "mongo-db",
				Value:   "fuel_stations",
				Usage:   "MongoDB database name",
				Sources: cli.EnvVars("MONGO_DB"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Run an MCP stdio server, reusing an external API or starting an internal one",
				Action: runStdioMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// runtime holds everything assembled for one server instance.
type runtime struct {
	handler http.Handler
	cleanup func(ctx context.Context)
}

// buildRuntime wires storage, the world, both engines, the WebSocket hub,
// and the REST router. baseURL is where the /mcp proxy should call back to.
func buildRuntime(ctx context.Context, cmd *cli.Command, baseURL string, log zerolog.Logger) (*runtime, error) {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	profile := manager.GetDefault()
	if name := cmd.String("profile"); name != "" {
		profile, err = manager.LoadProfile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile %q: %w", name, err)
		}
	}
	log.Info().Str("profile", profile.Name).Int("stations", len(profile.Stations)).Msg("profile loaded")

	var (
		ledger     storage.Ledger
		wallet     storage.Wallet
		mongoStore *storage.MongoStore
	)
	if uri := cmd.String("mongo-uri"); uri != "" {
		mongoStore, err = storage.ConnectMongo(ctx, uri, cmd.String("mongo-db"), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		ledger, wallet = mongoStore, mongoStore
	} else {
		log.Warn().Msg("no mongodb uri configured, fuel records and wallets are in-memory only")
		mem := storage.NewMemoryStore()
		ledger, wallet = mem, mem
	}

	w := world.New()

	hub := websocket.NewHub(log)
	gateway := websocket.NewGateway(hub)

	fuelEngine := fuel.New(profile.Fuel, w, ledger, gateway, gateway, log)
	fuelEngine.Bind()

	refuelEngine := refuel.New(profile.Refuel, w, fuelEngine, wallet, gateway, gateway, log)
	hub.SetDialogHandler(refuelEngine)

	registry := station.NewRegistry(profile.Stations, log)
	registry.Bind(w, profile.Refuel.TriggerRadius, func(p world.Player) {
		if _, err := refuelEngine.Request(ctx, p.ID); err != nil {
			log.Debug().Err(err).Str("player", string(p.ID)).Msg("pump request rejected")
		}
	})

	fuelService := service.NewFuelService(w, fuelEngine, refuelEngine, registry, wallet, manager)
	apiServer := api.NewServer(fuelService, hub, log)

	go hub.Run(ctx)
	go func() {
		if err := fuelEngine.Run(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("fuel engine stopped")
		}
	}()

	mcpClient := mcp.NewClient(baseURL)

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

	cleanup := func(ctx context.Context) {
		refuelEngine.Close()
		if mongoStore != nil {
			if err := mongoStore.Close(ctx); err != nil {
				log.Error().Err(err).Msg("mongodb disconnect failed")
			}
		}
	}

	return &runtime{handler: mainRouter, cleanup: cleanup}, nil
}

// runServer starts the HTTP server with REST API, WebSocket hub, and the
// /mcp proxy endpoint, then blocks until a shutdown signal arrives.
func runServer(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.Bool("debug"))
	log.Info().Str("version", version).Msg("starting fuel station server")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	addr := cmd.String("addr")
	rt, err := buildRuntime(runCtx, cmd, "http://"+addr, log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      rt.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?player=<player_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	rt.cleanup(shutdownCtx)
	log.Info().Msg("server stopped")
	return nil
}

// runStdioMCP runs an MCP stdio server. It tries to reuse an external API
// at the configured address; if unavailable, it starts an internal HTTP API
// bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.Bool("debug"))

	externalURL := "http://" + cmd.String("addr")
	baseURL := ""

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
		baseURL = externalURL
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if baseURL == "" {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		baseURL = "http://" + internalAddr
		log.Info().Str("addr", internalAddr).Msg("starting internal HTTP server for MCP stdio")

		rt, err := buildRuntime(runCtx, cmd, baseURL, log)
		if err != nil {
			return err
		}
		defer rt.cleanup(context.Background())

		httpServer := &http.Server{Handler: rt.handler}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		// Give the listener a moment to start accepting
		time.Sleep(100 * time.Millisecond)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
