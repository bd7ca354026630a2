package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Show a user's level, rank and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cleanup, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := e.svc.GetProfile(ctx, args[0])
			if err != nil {
				return err
			}

			lines := []string{
				H1.Render(IconSparkle + " " + p.UserID),
				LabelValue("Title", p.Title),
				LabelValue("Level", p.Level),
				LabelValue("Rank", p.Rank),
				LabelValue("Total XP", p.TotalXP),
				LabelValue("Mode", p.Mode),
				fmt.Sprintf("%s %s", ProgressBar(p.XPIntoLevel, p.NextLevelXP-p.LevelFloor, 24),
					Muted.Render(fmt.Sprintf("%d to level %d", p.XPToNext, p.Level+1))),
			}
			if len(p.Artifacts) > 0 {
				lines = append(lines, LabelValue("Artifacts", strings.Join(p.Artifacts, ", ")))
			}
			fmt.Fprintln(cmd.OutOrStdout(), Panel.Render(strings.Join(lines, "\n")))
			return nil
		},
	}
}
