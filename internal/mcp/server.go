package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/web4labs/trustsim/internal/config"
	"github.com/web4labs/trustsim/internal/store"
)

// Server wraps the MCP SDK server and exposes the simulators as tools.
type Server struct {
	server *sdk.Server
	store  store.RunStore
	cfg    *config.Config
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name    string // Server name (e.g., "trustsim")
	Version string // Server version
	Dir     string // Directory for the run store database
	Config  *config.Config
}

// NewServer creates a new MCP server with trustsim tools.
func NewServer(cfg *ServerConfig) (*Server, error) {
	runStore, err := store.NewSQLiteRunStore(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create run store: %w", err)
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = config.Default()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{})

	s := &Server{
		server: mcpServer,
		store:  runStore,
		cfg:    appCfg,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all trustsim MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "trustsim_run",
		Description: "Run the single-agent trust economy simulation: lives, deaths, rebirth with karma",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "trustsim_network",
		Description: "Run the multi-agent network simulation with a colluding cartel and detection checks",
	}, s.handleNetwork)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "trustsim_detect",
		Description: "Analyze a stored run and return its significant moments, ranked",
	}, s.handleDetect)
}

// Run starts the MCP server over stdio transport. Blocks until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.store.Close()

	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}
