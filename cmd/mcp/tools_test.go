package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	grpccomm "github.com/AnishMulay/memfs/internal/communication/grpc"
	"github.com/AnishMulay/memfs/internal/log_service"
	memfsnode "github.com/AnishMulay/memfs/servers/memfs"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *ServerRegistry {
	t.Helper()
	node, err := memfsnode.Build(memfsnode.Options{
		NodeID:     "mcp-test",
		ListenAddr: "127.0.0.1:0",
		LogDir:     t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, node.Start())
	t.Cleanup(func() { _ = node.Stop() })

	comm := grpccomm.NewGRPCCommunicator("", log_service.NewNopLogService())
	t.Cleanup(func() { _ = comm.Stop() })

	return NewServerRegistry(&MCPConfig{
		Servers:       []ServerEntry{{ID: "a", Address: node.Address()}},
		DefaultServer: "a",
	}, comm)
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestTools_WriteReadList(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	res, err := handleMkdir(ctx, toolRequest(map[string]any{"path": "/notes"}), reg)
	require.NoError(t, err)
	assert.False(t, res.IsError, resultText(t, res))

	res, err = handleWrite(ctx, toolRequest(map[string]any{"path": "/notes/todo", "content": "buy milk"}), reg)
	require.NoError(t, err)
	assert.False(t, res.IsError, resultText(t, res))

	res, err = handleRead(ctx, toolRequest(map[string]any{"path": "/notes/todo"}), reg)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", resultText(t, res))

	res, err = handleList(ctx, toolRequest(map[string]any{"path": "/notes"}), reg)
	require.NoError(t, err)
	assert.Equal(t, "./\n../\ntodo\n", resultText(t, res))

	res, err = handleStat(ctx, toolRequest(map[string]any{"path": "/notes/todo", "server": "a"}), reg)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "size=8")

	res, err = handleDf(ctx, toolRequest(nil), reg)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "block size 512")
}

func TestTools_Errors(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*mcp.CallToolResult, error)
	}{
		{"missing path", func() (*mcp.CallToolResult, error) {
			return handleStat(ctx, toolRequest(map[string]any{}), reg)
		}},
		{"unknown server", func() (*mcp.CallToolResult, error) {
			return handleDf(ctx, toolRequest(map[string]any{"server": "zzz"}), reg)
		}},
		{"missing file", func() (*mcp.CallToolResult, error) {
			return handleRead(ctx, toolRequest(map[string]any{"path": "/nope"}), reg)
		}},
		{"bad mode", func() (*mcp.CallToolResult, error) {
			return handleMkdir(ctx, toolRequest(map[string]any{"path": "/d", "mode": "9z"}), reg)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.call()
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "memfs-1", cfg.DefaultServer)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("servers:\n  - id: x\n    address: localhost:9999\n"), 0644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.DefaultServer)
	assert.Equal(t, "localhost:9999", cfg.Servers[0].Address)

	require.NoError(t, os.WriteFile(path, []byte("servers: []\n"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := parseMode("")
	require.NoError(t, err)
	assert.Equal(t, uint32(0755), m)

	m, err = parseMode("0700")
	require.NoError(t, err)
	assert.Equal(t, uint32(0700), m)
}
