package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDashboardCommand() *cobra.Command {
	var user, tz string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print a user's dashboard as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, mgr, err := openDatabase()
			if err != nil {
				return err
			}
			defer mgr.Close()

			loc := cfg.Location()
			if tz != "" {
				if loc, err = time.LoadLocation(tz); err != nil {
					return fmt.Errorf("invalid --tz %q: %w", tz, err)
				}
			}

			userID, err := resolveUser(mgr.DB(), user)
			if err != nil {
				return err
			}

			dashboard, err := newServiceSet(mgr.DB()).dashboard.GetDashboard(userID, loc)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dashboard)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "email of the user (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone for month boundaries (default DEFAULT_TIMEZONE)")

	return cmd
}
