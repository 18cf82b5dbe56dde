// Package jobs runs freedome's periodic maintenance.
package jobs

import (
	"context"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/auth"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultBackfillSpec runs the geocode backfill once an hour.
const DefaultBackfillSpec = "@hourly"

// backfillTimeout bounds a single run so a stuck maps request can't pile up
// runs behind it.
const backfillTimeout = 30 * time.Minute

// Backfiller geocodes businesses that have no coordinates. It's implemented
// by service.Service.
type Backfiller interface {
	GeocodeBackfill(ctx context.Context) (freedome.GeocodeBackfillReply, error)
}

// Scheduler runs the geocode backfill on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	service Backfiller
	logger  *zap.Logger
}

// NewScheduler schedules the backfill with a standard five-field cron spec
// or a descriptor like "@hourly". A run that's still going when the next one
// is due makes the next one skip.
func NewScheduler(spec string, service Backfiller, logger *zap.Logger) (*Scheduler, error) {
	const op errors.Op = "jobs.NewScheduler"

	if spec == "" {
		spec = DefaultBackfillSpec
	}

	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		service: service,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, s.RunBackfill); err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("job scheduler started")
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job to finish, or for ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunBackfill runs the geocode backfill once, as the system admin.
func (s *Scheduler) RunBackfill() {
	ctx, cancel := context.WithTimeout(context.Background(), backfillTimeout)
	defer cancel()

	ctx = log.ToContext(ctx, s.logger.With(zap.String("job", "geocode-backfill")))
	ctx = auth.Context(ctx, auth.ID("system:cron"), auth.Admin(true))

	reply, err := s.service.GeocodeBackfill(ctx)
	if err != nil {
		log.FromContext(ctx).Error("geocode backfill failed", zap.Error(err))
		return
	}
	if reply.Failed > 0 {
		log.FromContext(ctx).Warn("some businesses couldn't be geocoded", zap.Int("failed", reply.Failed))
	}
}

// cronLogger sends cron's own logging to zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
