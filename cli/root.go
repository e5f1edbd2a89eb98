package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmontoya/filepart/internal"
)

type ctxKey string

const appCtxKey ctxKey = "appData"

func NewRootCommand() *cobra.Command {
	var appConfigPath string

	rootCmd := &cobra.Command{
		Use:   "filepart",
		Short: "filepart splits files into numbered parts and reassembles them",
		Long:  `filepart is a CLI tool that chunks binary and CSV files into numbered part files on disk and reconstructs the original from those parts, with an optional manifest so reassembly never has to probe the filesystem.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.LoadAppConfig(appConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load app config: %w", err)
			}
			if err := internal.ConfigureLogger(cfg.LogLevel); err != nil {
				internal.Warn("invalid log level in app config, defaulting to info", internal.Fields{
					internal.FieldError: err.Error(),
				})
			}

			ctx := context.WithValue(cmd.Context(), appCtxKey, cfg)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&appConfigPath, "app-config", "", "Path to app config file (TOML)")

	rootCmd.AddCommand(ChunkCommand())
	rootCmd.AddCommand(JoinCommand())
	rootCmd.AddCommand(RoundTripCommand())
	rootCmd.AddCommand(PlanCommand())
	rootCmd.AddCommand(ServerCommand())

	return rootCmd
}

// Helper function for subcommands to get appData
func GetAppConfig(cmd *cobra.Command) *internal.AppConfig {
	if v := cmd.Context().Value(appCtxKey); v != nil {
		if data, ok := v.(*internal.AppConfig); ok {
			return data
		}
	}
	return nil
}
