package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/rollcall/internal/config"
	"github.com/nfrund/rollcall/internal/database"
	"github.com/nfrund/rollcall/internal/logging"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo roster into the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.New()
		cfg := config.New()
		ctx := cmd.Context()

		repo, closeRepo, err := database.NewRepository(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer closeRepo()

		n, err := database.Seed(ctx, repo)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Store already has students, nothing to do.")
			return nil
		}
		fmt.Printf("Seeded %d students into the %s store.\n", n, cfg.StorageBackend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
