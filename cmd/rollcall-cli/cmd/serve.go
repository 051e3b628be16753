package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nfrund/rollcall/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Rollcall web server",
	Run: func(cmd *cobra.Command, args []string) {
		s := server.New()
		s.RegisterRoutes()
		s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
