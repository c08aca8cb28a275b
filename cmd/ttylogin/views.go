package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hnrobert/ttylogin/internal/config"
	"github.com/hnrobert/ttylogin/internal/utmp"
)

func newUsersCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users offered at the login prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewStore(*cfgPath).Get()
			if err != nil {
				return err
			}
			users, _, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tUID\tGID\tHOME\tSHELL")
			for _, u := range users {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", u.Name, u.UID, u.GID, u.Home, u.Shell)
			}
			return w.Flush()
		},
	}
}

func newSessionsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List launchable sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewStore(*cfgPath).Get()
			if err != nil {
				return err
			}
			_, sessions, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tTYPE\tCOMMAND")
			for _, s := range sessions {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Type, s.Cmd)
			}
			return w.Flush()
		},
	}
}

func newWhoCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "who",
		Short: "Show logged in users from the accounting database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewStore(*cfgPath).Get()
			if err != nil {
				return err
			}
			recs, err := utmp.Active(cfg.Accounting.UtmpFile)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range recs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.UserString(), r.LineString(), r.Time().Local().Format(time.DateTime), r.PID)
			}
			return w.Flush()
		},
	}
}
