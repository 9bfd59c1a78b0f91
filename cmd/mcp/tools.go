package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func serverParam() mcp.ToolOption {
	return mcp.WithString("server",
		mcp.Description("Server id from the MCP config; the default server when empty"),
	)
}

func addTools(s *server.MCPServer, registry *ServerRegistry) {
	s.AddTool(mcp.NewTool("list_servers",
		mcp.WithDescription("List all configured memfs servers"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListServers(registry), nil
	})

	s.AddTool(mcp.NewTool("memfs_stat",
		mcp.WithDescription("Show the attributes of a path"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path")),
		serverParam(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleStat(ctx, request, registry)
	})

	s.AddTool(mcp.NewTool("memfs_ls",
		mcp.WithDescription("List a directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute directory path")),
		serverParam(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleList(ctx, request, registry)
	})

	s.AddTool(mcp.NewTool("memfs_mkdir",
		mcp.WithDescription("Create a directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the new directory")),
		mcp.WithString("mode", mcp.Description("Octal permission bits, 0755 when empty")),
		serverParam(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleMkdir(ctx, request, registry)
	})

	s.AddTool(mcp.NewTool("memfs_write",
		mcp.WithDescription("Write text to a file, creating it if needed"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute file path")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to write at offset 0")),
		serverParam(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleWrite(ctx, request, registry)
	})

	s.AddTool(mcp.NewTool("memfs_read",
		mcp.WithDescription("Read the whole content of a file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute file path")),
		serverParam(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRead(ctx, request, registry)
	})

	s.AddTool(mcp.NewTool("memfs_df",
		mcp.WithDescription("Show volume capacity"),
		serverParam(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDf(ctx, request, registry)
	})
}

func handleListServers(registry *ServerRegistry) *mcp.CallToolResult {
	var b strings.Builder
	b.WriteString("Available servers:\n")
	for id, c := range registry.Clients {
		fmt.Fprintf(&b, "- %s: %s\n", id, c.ServerAddr)
	}
	fmt.Fprintf(&b, "Default server: %s\n", registry.DefaultServer)
	return mcp.NewToolResultText(b.String())
}

func handleStat(ctx context.Context, request mcp.CallToolRequest, registry *ServerRegistry) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := registry.client(request.GetString("server", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	attr, err := c.GetAttr(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to stat %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: ino=%d kind=%s mode=%#o size=%d blocks=%d nlink=%d mtime=%s",
		path, attr.Ino, attr.Kind, attr.Mode, attr.Size, attr.Blocks, attr.Nlink, attr.ModifyTime.Format("2006-01-02T15:04:05Z07:00"))), nil
}

func handleList(ctx context.Context, request mcp.CallToolRequest, registry *ServerRegistry) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := registry.client(request.GetString("server", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := c.ReadDir(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list %s: %v", path, err)), nil
	}
	var b strings.Builder
	for _, e := range entries {
		suffix := ""
		if e.Attr.IsDir() {
			suffix = "/"
		}
		fmt.Fprintf(&b, "%s%s\n", e.Name, suffix)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleMkdir(ctx context.Context, request mcp.CallToolRequest, registry *ServerRegistry) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := parseMode(request.GetString("mode", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := registry.client(request.GetString("server", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	attr, err := c.Mkdir(ctx, path, mode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created directory %s (ino %d)", path, attr.Ino)), nil
}

func handleWrite(ctx context.Context, request mcp.CallToolRequest, registry *ServerRegistry) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := registry.client(request.GetString("server", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := c.WriteFile(ctx, path, []byte(content)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to write %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %d bytes to %s", len(content), path)), nil
}

func handleRead(ctx context.Context, request mcp.CallToolRequest, registry *ServerRegistry) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := registry.client(request.GetString("server", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := c.ReadFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleDf(ctx context.Context, request mcp.CallToolRequest, registry *ServerRegistry) (*mcp.CallToolResult, error) {
	c, err := registry.client(request.GetString("server", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	st, err := c.StatFs(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to stat volume: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("blocks %d/%d free (block size %d), inodes %d/%d free",
		st.FreeBlocks, st.TotalBlocks, st.BlockSize, st.FreeInodes, st.TotalInodes)), nil
}

// parseMode reads octal permission bits; empty means 0755.
func parseMode(s string) (uint32, error) {
	if s == "" {
		return 0755, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return uint32(v), nil
}
