package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdesk/duty-roster/internal/config"
	"github.com/opsdesk/duty-roster/internal/roster"
)

func newMemberCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage team members",
	}
	cmd.AddCommand(newMemberAddCommand(app), newMemberListCommand(app), newMemberDeactivateCommand(app))
	return cmd
}

func newMemberAddCommand(app func() *App) *cobra.Command {
	var (
		name       string
		email      string
		role       string
		officeDays []string
	)

	cmd := &cobra.Command{
		Use:   "add <member-id>",
		Short: "Add or update a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := config.ParseWeekdays(officeDays)
			if err != nil {
				return fmt.Errorf("invalid --office-days: %w", err)
			}
			r := roster.Role(role)
			if r != roster.RoleAdmin && r != roster.RoleMember {
				return fmt.Errorf("invalid --role %q, want admin or member", role)
			}
			m := roster.Member{
				ID:         args[0],
				Name:       name,
				Email:      email,
				Role:       r,
				OfficeDays: days,
				Active:     true,
			}
			if m.Name == "" {
				m.Name = m.ID
			}
			if err := app().Store.SaveMember(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Member %s saved\n", m.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(roster.RoleMember), "role: admin or member")
	cmd.Flags().StringSliceVar(&officeDays, "office-days", []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, "office presence days")
	return cmd
}

func newMemberListCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := app().Store.Members(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range members {
				state := "active"
				if !m.Active {
					state = "inactive"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
					m.ID, m.Name, m.Role, state, formatOfficeDays(m))
			}
			return nil
		},
	}
}

func newMemberDeactivateCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <member-id>",
		Short: "Deactivate a member; their history stays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app().Store.DeactivateMember(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Member %s deactivated\n", args[0])
			return nil
		},
	}
}

var weekdayDisplayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func formatOfficeDays(m roster.Member) string {
	var names []string
	for _, d := range weekdayDisplayOrder {
		if m.OfficeDays[d] {
			names = append(names, d.String()[:3])
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, " ")
}
