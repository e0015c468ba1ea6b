package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/intake/internal/app"
	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP intake server",
	Long: `Loads configuration from the environment (and a .env file if present),
then serves POST /input/ until interrupted.

Examples:
  intake serve
  intake serve --addr :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		logging.New(cfg.LogFormat, cfg.LogLevel)

		addr := cfg.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		if err := app.Run(cmd.Context(), cfg, addr); err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
}
