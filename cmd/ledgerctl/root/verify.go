package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"xp-ledger/services"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [user-id]",
		Short: "Re-derive ledger aggregates and report inconsistencies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cleanup, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var failing []services.AuditReport
			if len(args) == 1 {
				report, err := e.svc.VerifyUser(ctx, args[0])
				if err != nil {
					return err
				}
				if !report.OK() {
					failing = append(failing, *report)
				}
			} else {
				failing, err = e.svc.VerifyAll(ctx)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(failing) == 0 {
				fmt.Fprintln(out, Good.Render(IconOK+" ledger is consistent"))
				return nil
			}
			for _, r := range failing {
				fmt.Fprintln(out, Warn.Render(fmt.Sprintf("%s %s (version %d)", IconWarn, r.UserID, r.Version)))
				for _, v := range r.Violations {
					fmt.Fprintf(out, "  - %s %s\n", Key.Render(v.Check+":"), v.Detail)
				}
			}
			return fmt.Errorf("%d user(s) inconsistent", len(failing))
		},
	}
}
