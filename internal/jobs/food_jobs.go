package jobs

import (
	"context"

	"sharebite/internal/logger"
)

// ExpireFoodPosts moves available posts past their expiry date to expired.
// Posts claimed in the meantime are left alone.
func (jr *JobRunner) ExpireFoodPosts() {
	jr.runWithRecovery("ExpireFoodPosts", func() error {
		count, err := jr.services.Food.ExpirePosts(context.Background(), jr.now())
		if err != nil {
			return err
		}
		logger.Info("Marked food posts as expired", "count", count)
		return nil
	})
}

// SendPendingVerificationDigest emails the configured admin the list of
// organizations waiting for verification.
func (jr *JobRunner) SendPendingVerificationDigest() {
	jr.runWithRecovery("SendPendingVerificationDigest", func() error {
		count, err := jr.services.Admin.SendPendingDigest(context.Background(), jr.config.Admin.Email)
		if err != nil {
			return err
		}
		logger.Info("Pending verification digest processed", "pending", count)
		return nil
	})
}
