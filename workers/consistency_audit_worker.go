package workers

import (
	"context"
	"fmt"

	"xp-ledger/logger"
	"xp-ledger/services"
)

// ConsistencyAuditWorker periodically re-derives every user's aggregates and
// logs each violation it finds. It never repairs anything.
type ConsistencyAuditWorker struct {
	svc *services.ProgressionService
	log *logger.Logger
}

func NewConsistencyAuditWorker(svc *services.ProgressionService, log *logger.Logger) *ConsistencyAuditWorker {
	return &ConsistencyAuditWorker{svc: svc, log: log}
}

// Run audits all users and returns an error when any of them is inconsistent.
func (w *ConsistencyAuditWorker) Run(ctx context.Context) error {
	failing, err := w.svc.VerifyAll(ctx)
	if err != nil {
		return err
	}
	for _, report := range failing {
		for _, v := range report.Violations {
			w.log.Warn("ledger inconsistency", "user_id", report.UserID, "version", report.Version,
				"check", v.Check, "detail", v.Detail)
		}
	}
	if len(failing) > 0 {
		return fmt.Errorf("%d user(s) failed the consistency audit", len(failing))
	}
	return nil
}
