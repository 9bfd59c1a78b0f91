package main

import (
	"context"
	"time"

	memlib "github.com/AnishMulay/memfs/clients/library"
	"github.com/AnishMulay/memfs/internal/config"
	grpccomm "github.com/AnishMulay/memfs/internal/communication/grpc"
	"github.com/AnishMulay/memfs/internal/log_service"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "memfs",
	Short: "In-memory POSIX-style filesystem server and client",
	Long: `memfs keeps a whole filesystem tree in memory and serves it over gRPC.

Run "memfs serve" to start a node, then use the client commands (stat, ls,
mkdir, touch, cat, write, df) against it with --server.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", config.DefaultListenAddr, "Address of the memfs server")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Timeout for each client request")
}

// withClient dials the server named by --server and hands a client to fn.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *memlib.Client) error) error {
	addr, err := cmd.Flags().GetString("server")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	comm := grpccomm.NewGRPCCommunicator("", log_service.NewNopLogService())
	defer func() { _ = comm.Stop() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	c := memlib.NewClient(addr, comm)
	c.From = "memfs-cli"
	return fn(ctx, c)
}
