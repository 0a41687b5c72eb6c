package draft

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronParser accepts an optional leading seconds field and descriptors
// such as "@every 1h".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Purger periodically deletes drafts older than maxAge.
type Purger struct {
	repo   Repository
	maxAge time.Duration
	sched  *cron.Cron
}

func NewPurger(repo Repository, maxAge time.Duration) *Purger {
	return &Purger{
		repo:   repo,
		maxAge: maxAge,
		sched:  cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the job with the given cron spec ("@every 1h",
// "0 */2 * * *", "30 0 */2 * * *") and starts the scheduler.
func (p *Purger) Start(spec string) error {
	if _, err := p.sched.AddFunc(spec, func() { p.RunOnce(context.Background()) }); err != nil {
		return err
	}
	p.sched.Start()
	zap.S().Infof("draft purger scheduled: %s (max age %s)", spec, p.maxAge)
	return nil
}

// Stop waits for a running purge to finish.
func (p *Purger) Stop() {
	<-p.sched.Stop().Done()
}

func (p *Purger) RunOnce(ctx context.Context) int64 {
	n, err := p.repo.PurgeOlderThan(ctx, time.Now().UTC().Add(-p.maxAge))
	if err != nil {
		zap.S().Errorw("draft purge failed", "error", err)
		return 0
	}
	if n > 0 {
		zap.S().Infow("purged stale combo drafts", "count", n)
	}
	return n
}
