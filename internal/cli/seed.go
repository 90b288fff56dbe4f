package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Raymond9734/invoice-dashboard/internal/repository"
	"github.com/Raymond9734/invoice-dashboard/internal/seed"
)

func newSeedCmd(open opener) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load placeholder customers and invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, logger, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			if migrate {
				if err := database.Migrate(cmd.Context()); err != nil {
					return err
				}
			}

			result, err := seed.Load(
				cmd.Context(),
				repository.NewCustomerRepository(database.DB),
				repository.NewInvoiceRepository(database.DB),
				logger,
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d customers and %d invoices\n", result.Customers, result.Invoices)
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before seeding")

	return cmd
}
