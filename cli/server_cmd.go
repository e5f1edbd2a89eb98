package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmontoya/filepart/backend/store"
	"github.com/lmontoya/filepart/internal"
	"github.com/lmontoya/filepart/pkg/metrics"
	"github.com/lmontoya/filepart/server"
)

func ServerCommand() *cobra.Command {
	var serverConfigPath string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chunk store server",
		Long:  "Serve the chunk store over HTTP: upload files for chunking, list stored chunk sets, download individual parts or the reassembled original.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.LoadServerConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if err := internal.ConfigureLogger(cfg.LogLevel); err != nil {
				internal.Warn("invalid log level in server config, defaulting to info", internal.Fields{
					internal.FieldError: err.Error(),
				})
			}
			if port != 0 {
				cfg.Port = port
			}

			collector := metrics.NewSplitCollector()
			st, err := store.New(cfg.StoreDir, collector)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			appCfg := GetAppConfig(cmd)
			chunkSize := int64(1) * 1024 * 1024
			if appCfg != nil && appCfg.ChunkSizeMB > 0 {
				chunkSize = appCfg.ChunkSizeMB * 1024 * 1024
			}

			srv := server.New(st, collector, chunkSize)
			return srv.ListenAndServe(cfg.Port, cfg.AllowedOrigins)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", "", "Path to the server config file (TOML)")
	cmd.Flags().IntVar(&port, "port", 0, "Override the configured listen port")
	return cmd
}
