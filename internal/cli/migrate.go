package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/grocery-service/internal/persistence"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				names, err := persistence.MigrationNames()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			env, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := persistence.RunMigrations(cmd.Context(), env.pg.PoolHandle(), env.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print embedded migrations without connecting")
	return cmd
}
