package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerbuddy/internal/cli"
	"ledgerbuddy/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the detection database schema up to date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("✓ Database schema is up to date (version %d)", storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
