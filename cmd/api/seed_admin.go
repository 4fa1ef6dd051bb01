package main

import (
	"github.com/anjiri1684/school_admin/database"
	"github.com/spf13/cobra"
)

func newSeedAdminCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the bootstrap administrator account",
		Long: `Create the bootstrap administrator if no account uses the email yet.

Flags override ADMIN_NAME, ADMIN_EMAIL and ADMIN_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if name == "" {
				name = cfg.AdminName
			}
			if email == "" {
				email = cfg.AdminEmail
			}
			if password == "" {
				password = cfg.AdminPassword
			}

			db, err := database.Connect(cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			if err := database.Migrate(db, log); err != nil {
				return err
			}
			return database.SeedAdmin(cmd.Context(), db, name, email, password, log)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "administrator display name")
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password")
	return cmd
}
