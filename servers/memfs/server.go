// Package memfs assembles a single memfs node: logger, engine, transport and
// request router.
package memfs

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	grpccomm "github.com/AnishMulay/memfs/internal/communication/grpc"
	logservice "github.com/AnishMulay/memfs/internal/log_service"
	locallog "github.com/AnishMulay/memfs/internal/log_service/localdisc"
	"github.com/AnishMulay/memfs/internal/memfs"
	posixserver "github.com/AnishMulay/memfs/internal/posix_server/simple"
	"github.com/AnishMulay/memfs/internal/server"
)

type Options struct {
	NodeID     string
	ListenAddr string
	// LogDir empty means log to stderr.
	LogDir   string
	LogLevel string

	EngineOptions []memfs.Option
}

type Node struct {
	opts   Options
	ls     *locallog.LocalDiscLogService
	engine *memfs.Engine
	comm   *grpccomm.GRPCCommunicator
	server server.Server
}

func Build(opts Options) (*Node, error) {
	if opts.LogLevel == "" {
		opts.LogLevel = logservice.InfoLevel
	}

	// 1. Logging
	ls, err := locallog.NewLocalDiscLogService(opts.LogDir, opts.NodeID, opts.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	// 2. Engine
	engineOpts := append([]memfs.Option{memfs.WithLogService(ls)}, opts.EngineOptions...)
	engine := memfs.New(engineOpts...)

	// 3. Communication
	comm := grpccomm.NewGRPCCommunicator(opts.ListenAddr, ls)

	// 4. Server
	var srv server.Server = posixserver.NewSimplePosixServer(comm, engine, ls)

	return &Node{opts: opts, ls: ls, engine: engine, comm: comm, server: srv}, nil
}

func (n *Node) Start() error {
	return n.server.Start()
}

func (n *Node) Stop() error {
	err := n.server.Stop()
	if cerr := n.ls.Close(); err == nil {
		err = cerr
	}
	return err
}

// Address is the bound listen address once the node has started.
func (n *Node) Address() string {
	return n.comm.Address()
}

func (n *Node) Engine() *memfs.Engine {
	return n.engine
}

// Run starts the node and blocks until SIGINT or SIGTERM.
func (n *Node) Run() error {
	if err := n.Start(); err != nil {
		return err
	}

	n.ls.Info(logservice.LogEvent{
		Message:  "memfs node running",
		Metadata: map[string]any{"node": n.opts.NodeID, "address": n.Address()},
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	signal.Stop(c)

	return n.Stop()
}
