package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/repository"
	"github.com/spec-kit/grocery-service/internal/service"
)

// NewRolesCommand creates the roles command group.
func NewRolesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage staff roles",
	}
	cmd.AddCommand(newRolesSeedCommand(rootOpts))
	cmd.AddCommand(newRolesListCommand(rootOpts))
	return cmd
}

func newRolesSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default staff roles that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			added, err := staffService(env).SeedRoles(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d role(s) added\n", added)
			return nil
		},
	}
}

func newRolesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print staff roles and the access role each maps to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			roles, err := staffService(env).ListRoles(cmd.Context())
			if err != nil {
				return err
			}
			for _, role := range roles {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", role.ID, role.Name, domain.RoleFromStaffRoleName(role.Name))
			}
			return nil
		},
	}
}

func staffService(env *environment) *service.StaffService {
	pool := env.pg.PoolHandle()
	return service.NewStaffService(env.cfg.Auth, service.StaffDependencies{
		CustomerRepo:  repository.NewCustomerRepository(pool),
		StaffRepo:     repository.NewStaffRepository(pool),
		StaffRoleRepo: repository.NewStaffRoleRepository(pool),
	})
}
