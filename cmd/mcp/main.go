package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	memlib "github.com/AnishMulay/memfs/clients/library"
	grpccomm "github.com/AnishMulay/memfs/internal/communication/grpc"
	"github.com/AnishMulay/memfs/internal/log_service"
	locallog "github.com/AnishMulay/memfs/internal/log_service/localdisc"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

type ServerEntry struct {
	ID      string `yaml:"id"`
	Address string `yaml:"address"`
}

type MCPConfig struct {
	Servers       []ServerEntry `yaml:"servers"`
	DefaultServer string        `yaml:"default_server"`
}

func defaultMCPConfig() *MCPConfig {
	return &MCPConfig{
		Servers:       []ServerEntry{{ID: "memfs-1", Address: "localhost:8080"}},
		DefaultServer: "memfs-1",
	}
}

// LoadConfig reads the MCP configuration, writing a default one if the file
// does not exist.
func LoadConfig(path string) (*MCPConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultMCPConfig()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &MCPConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("config %s lists no servers", path)
	}
	if cfg.DefaultServer == "" {
		cfg.DefaultServer = cfg.Servers[0].ID
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "mcp_config.yaml", "Path to the MCP configuration file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	ls, err := locallog.NewLocalDiscLogService("", "mcp-server", log_service.WarnLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	comm := grpccomm.NewGRPCCommunicator("", ls)
	defer func() {
		_ = comm.Stop()
		_ = ls.Close()
	}()

	registry := NewServerRegistry(cfg, comm)

	s := server.NewMCPServer(
		"memfs",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	addTools(s, registry)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
	}
}

// ServerRegistry resolves a server id to a client.
type ServerRegistry struct {
	Clients       map[string]*memlib.Client
	DefaultServer string
}

func NewServerRegistry(cfg *MCPConfig, comm *grpccomm.GRPCCommunicator) *ServerRegistry {
	r := &ServerRegistry{
		Clients:       make(map[string]*memlib.Client, len(cfg.Servers)),
		DefaultServer: cfg.DefaultServer,
	}
	for _, srv := range cfg.Servers {
		c := memlib.NewClient(srv.Address, comm)
		c.From = "mcp-server"
		r.Clients[srv.ID] = c
	}
	return r
}

func (r *ServerRegistry) client(serverID string) (*memlib.Client, error) {
	if serverID == "" {
		serverID = r.DefaultServer
	}
	c, ok := r.Clients[serverID]
	if !ok {
		return nil, fmt.Errorf("server %s not found", serverID)
	}
	return c, nil
}
