package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the customers and invoices tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, logger, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}

			logger.Info("schema up to date")
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
