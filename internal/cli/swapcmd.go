package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opsdesk/duty-roster/internal/swap"
)

func newSwapCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Propose, approve and apply assignment swaps",
	}
	cmd.AddCommand(
		newSwapProposeCommand(app),
		newSwapDecideCommand(app, "peer", "Record the receiving member's decision"),
		newSwapDecideCommand(app, "admin", "Record the admin decision"),
		newSwapListCommand(app),
		newSwapReassignCommand(app),
	)
	return cmd
}

func newSwapProposeCommand(app func() *App) *cobra.Command {
	var (
		assignmentID int64
		requestedBy  string
		toMemberID   string
		note         string
	)

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose moving an assignment to another member",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			// Fail early on targets that could never be applied
			if _, err := a.Store.AssignmentByID(cmd.Context(), assignmentID); err != nil {
				return err
			}
			if _, err := a.Store.MemberByID(cmd.Context(), toMemberID); err != nil {
				return err
			}

			req := swap.NewRequest(assignmentID, requestedBy, toMemberID, note)
			if err := a.Store.CreateSwapRequest(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Swap request %d created (%s)\n", req.ID, req.Status)
			return nil
		},
	}

	cmd.Flags().Int64Var(&assignmentID, "assignment", 0, "assignment ID to move")
	cmd.Flags().StringVar(&requestedBy, "by", "", "member proposing the swap")
	cmd.Flags().StringVar(&toMemberID, "to", "", "member taking over")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	_ = cmd.MarkFlagRequired("assignment")
	_ = cmd.MarkFlagRequired("by")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// newSwapDecideCommand handles both the peer and the admin vote. A request
// that reaches approved is validated and applied immediately.
func newSwapDecideCommand(app func() *App, voter, short string) *cobra.Command {
	var approve, reject bool

	cmd := &cobra.Command{
		Use:   voter + " <request-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if approve == reject {
				return fmt.Errorf("exactly one of --approve or --reject is required")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid request ID %q", args[0])
			}

			a := app()
			req, err := a.Store.SwapRequestByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			decision := swap.DecisionApproved
			if reject {
				decision = swap.DecisionRejected
			}
			if voter == "peer" {
				err = req.RecordPeerDecision(decision)
			} else {
				err = req.RecordAdminDecision(decision)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if req.Status == swap.StatusApproved {
				if _, err := a.Applier.Apply(cmd.Context(), req); err != nil {
					return fmt.Errorf("swap approved but not applied: %w", err)
				}
				fmt.Fprintf(out, "Swap request %d approved and applied\n", req.ID)
			} else {
				fmt.Fprintf(out, "Swap request %d is now %s\n", req.ID, req.Status)
			}
			return a.Store.UpdateSwapRequest(cmd.Context(), req)
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "approve the swap")
	cmd.Flags().BoolVar(&reject, "reject", false, "reject the swap")
	return cmd
}

func newSwapListCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List swap requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := app().Store.SwapRequests(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range requests {
				fmt.Fprintf(out, "%d\tassignment=%d\t%s -> %s\tpeer=%s admin=%s\t%s\n",
					r.ID, r.AssignmentID, r.RequestedBy, r.ToMemberID,
					r.PeerDecision, r.AdminDecision, r.Status)
			}
			return nil
		},
	}
}

func newSwapReassignCommand(app func() *App) *cobra.Command {
	var (
		assignmentID int64
		toMemberID   string
	)

	cmd := &cobra.Command{
		Use:   "reassign",
		Short: "Move an assignment directly, without peer approval (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			replaced, err := app().Applier.Reassign(cmd.Context(), assignmentID, toMemberID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assignment %d reassigned to %s (%d rows)\n",
				assignmentID, toMemberID, len(replaced))
			return nil
		},
	}

	cmd.Flags().Int64Var(&assignmentID, "assignment", 0, "assignment ID to move")
	cmd.Flags().StringVar(&toMemberID, "to", "", "member taking over")
	_ = cmd.MarkFlagRequired("assignment")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
