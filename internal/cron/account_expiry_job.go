package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const accountExpiryJobName = "account_expiry"

type expiredAccountDeactivator interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type accountExpiryJob struct {
	logg     *logger.Logger
	accounts expiredAccountDeactivator
	now      func() time.Time
}

// NewAccountExpiryJob deactivates temporary accounts past their expiry so they
// disappear from the active list even if they never try to log in again.
func NewAccountExpiryJob(logg *logger.Logger, accounts expiredAccountDeactivator) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account repository required")
	}
	return &accountExpiryJob{logg: logg, accounts: accounts, now: time.Now}, nil
}

func (j *accountExpiryJob) Name() string { return accountExpiryJobName }

func (j *accountExpiryJob) Run(ctx context.Context) error {
	affected, err := j.accounts.DeactivateExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate expired accounts: %w", err)
	}
	if affected > 0 {
		j.logg.Info(j.logg.WithField(ctx, "deactivated", affected), "expired accounts deactivated")
	}
	return nil
}
