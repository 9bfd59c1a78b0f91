package main

import (
	"github.com/AnishMulay/memfs/internal/config"
	memfsnode "github.com/AnishMulay/memfs/servers/memfs"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a memfs node",
	Long: `Start a memfs node and block until interrupted.

Settings come from --config when given; flags override the file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("config", "", "Path to a YAML config file (written with defaults if missing)")
	serveCmd.Flags().String("listen", "", "Listen address (overrides listen_addr)")
	serveCmd.Flags().String("node-id", "", "Node id (overrides node_id)")
	serveCmd.Flags().String("log-dir", "", "Log directory, stderr when empty (overrides log.dir)")
	serveCmd.Flags().String("log-level", "", "DEBUG, INFO, WARN or ERROR (overrides log.level)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}

	node, err := memfsnode.Build(memfsnode.Options{
		NodeID:     cfg.NodeID,
		ListenAddr: cfg.ListenAddr,
		LogDir:     cfg.Log.Dir,
		LogLevel:   cfg.Log.Level,
	})
	if err != nil {
		return err
	}
	return node.Run()
}

// serveConfig loads --config, if set, and applies flag overrides.
func serveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"listen", &cfg.ListenAddr},
		{"node-id", &cfg.NodeID},
		{"log-dir", &cfg.Log.Dir},
		{"log-level", &cfg.Log.Level},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			v, _ := cmd.Flags().GetString(o.flag)
			*o.target = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
