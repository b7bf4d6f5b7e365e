package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/grocery-service/internal/repository"
	"github.com/spec-kit/grocery-service/internal/service"
)

// NewNotesCommand creates the notes command group.
func NewNotesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Maintain legacy order notes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "backfill",
		Short: "Convert legacy customer notes into structured delivery info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			orders := repository.NewOrderRepository(env.pg.PoolHandle())
			converted, err := service.NewNotesBackfill(orders, env.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d order(s) converted\n", converted)
			return nil
		},
	})
	return cmd
}
