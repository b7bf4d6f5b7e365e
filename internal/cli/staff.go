package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/service"
)

const staffPasswordEnv = "STORECTL_STAFF_PASSWORD"

// NewStaffCommand creates the staff command group.
func NewStaffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage operations panel accounts",
	}
	cmd.AddCommand(newStaffCreateCommand(rootOpts))
	return cmd
}

func newStaffCreateCommand(rootOpts *RootOptions) *cobra.Command {
	input := service.StaffCreateInput{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a staff account",
		Long: `Provision a staff account without an acting administrator. Use it to
bootstrap the first admin of a fresh database. The password may be passed
through ` + staffPasswordEnv + ` instead of --password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input.Password == "" {
				input.Password = os.Getenv(staffPasswordEnv)
			}
			if input.Password == "" {
				return fmt.Errorf("a password is required: pass --password or set %s", staffPasswordEnv)
			}

			env, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			member, err := staffService(env).Provision(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s, %s)\n",
				member.CorporateEmail, member.RoleName, domain.RoleFromStaffRoleName(member.RoleName))
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "corporate email")
	cmd.Flags().StringVar(&input.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&input.RoleName, "role", "", "staff role name, e.g. Administrador")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
