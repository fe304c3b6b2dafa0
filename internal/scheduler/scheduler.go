package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	HousekeepingSpec      = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	SessionIdleTTL        = 24 * time.Hour
	housekeepingTimeout   = 5 * time.Minute
)

// Store is the part of the database the housekeeping job prunes.
type Store interface {
	ExpireIdleSessions(ctx context.Context, before time.Time) (int64, error)
	DeleteSummariesBefore(ctx context.Context, before time.Time) (int64, error)
}

type Scheduler struct {
	ctx        context.Context
	cron       *cron.Cron
	store      Store
	historyTTL time.Duration
	now        func() time.Time
	log        *slog.Logger
}

func New(ctx context.Context, store Store, historyTTL time.Duration, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:        ctx,
		cron:       c,
		store:      store,
		historyTTL: historyTTL,
		now:        time.Now,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(HousekeepingSpec, s.housekeep); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) housekeep() {
	ctx, cancel := context.WithTimeout(s.ctx, housekeepingTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	now := s.now()

	sessionsBefore := now.Add(-SessionIdleTTL)
	expired, err := s.store.ExpireIdleSessions(ctx, sessionsBefore)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to expire idle sessions",
			"error", err,
			"before", sessionsBefore)
	}

	summariesBefore := now.Add(-s.historyTTL)
	deleted, err := s.store.DeleteSummariesBefore(ctx, summariesBefore)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete old summaries",
			"error", err,
			"before", summariesBefore)
	}

	s.log.InfoContext(ctx, "Housekeeping is done",
		"expiredSessions", expired,
		"deletedSummaries", deleted)
}
