package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"xp-ledger/logger"
	"xp-ledger/utils"
	"xp-ledger/workers"
)

func openBackupWorker(ctx context.Context, e *env) (*workers.SnapshotBackupWorker, error) {
	r2 := e.cfg.R2
	if !r2.Enabled() {
		return nil, errors.New("R2 is not configured (CLOUDFLARE_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_ACCESS_KEY_SECRET, R2_BUCKET_NAME)")
	}
	client, err := utils.NewR2Client(ctx, r2.AccountID, r2.AccessKeyID, r2.AccessKeySecret, r2.Bucket)
	if err != nil {
		return nil, err
	}
	return workers.NewSnapshotBackupWorker(e.store, client, logger.NewNop()), nil
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Archive every user snapshot to R2",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cleanup, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			w, err := openBackupWorker(ctx, e)
			if err != nil {
				return err
			}
			res, err := w.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Good.Render(fmt.Sprintf("%s %d snapshot(s) archived", IconBox, len(res.Keys))))
			fmt.Fprintln(cmd.OutOrStdout(), LabelValue("Prefix", res.Prefix))
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <object-key>",
		Short: "Restore one archived snapshot over the live one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cleanup, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			w, err := openBackupWorker(ctx, e)
			if err != nil {
				return err
			}
			snap, err := w.Restore(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Good.Render(fmt.Sprintf("%s restored %s at version %d", IconOK, snap.UserID, snap.Version)))
			return nil
		},
	}
}
