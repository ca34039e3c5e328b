package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/cse-council-api/internal/database"
	"github.com/yukikurage/cse-council-api/internal/repository"
	"github.com/yukikurage/cse-council-api/internal/services"
)

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the initial president account when no manager exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}

			result, err := services.SeedPresident(cmd.Context(), repository.NewUserRepository(db), cfg.Seed)
			if err != nil {
				return err
			}
			if !result.Created {
				return nil
			}

			logger.Info("president account created", "email", result.User.Email, "user_id", result.User.ID)
			if result.Password != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Temporary password for %s: %s\n", result.User.Email, result.Password)
			}
			return nil
		},
	}
}
