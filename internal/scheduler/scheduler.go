package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	"github.com/stayhive/stayhive/internal/clock"
	commissiondomain "github.com/stayhive/stayhive/internal/commission/domain"
	"github.com/stayhive/stayhive/internal/config"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	"github.com/stayhive/stayhive/internal/observability/metrics"
	"github.com/stayhive/stayhive/internal/ratelimit"
	"github.com/stayhive/stayhive/internal/requestmeta"
	searchdomain "github.com/stayhive/stayhive/internal/search/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidConfig signals a misassembled scheduler.
var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	AuditSvc      auditdomain.Service
	Maintainer    searchdomain.Maintainer
	CommissionSvc commissiondomain.Service
	HotelRepo     hoteldomain.Repository

	AppConfig config.Config
	Locker    *ratelimit.Locker `optional:"true"`
	Metrics   *metrics.Metrics  `optional:"true"`
	Config    Config            `optional:"true"`
}

// Scheduler drives the periodic maintenance jobs: audit retention, search
// reindexing, recent-booking refresh, and commission backfill. Jobs never
// run inside request transactions and take a redis lock so one instance at
// a time does the work.
type Scheduler struct {
	db             *gorm.DB
	log            *zap.Logger
	cfg            Config
	clock          clock.Clock
	auditSvc       auditdomain.Service
	maintainer     searchdomain.Maintainer
	commissionSvc  commissiondomain.Service
	hotelRepo      hoteldomain.Repository
	auditRetention time.Duration
	locker         *ratelimit.Locker
	metrics        *metrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.AuditSvc == nil ||
		p.Maintainer == nil || p.CommissionSvc == nil || p.HotelRepo == nil {
		return nil, ErrInvalidConfig
	}
	retention := p.AppConfig.AuditRetention
	if retention <= 0 {
		retention = 365 * 24 * time.Hour
	}
	return &Scheduler{
		db:             p.DB,
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            p.Config.withDefaults(),
		clock:          p.Clock,
		auditSvc:       p.AuditSvc,
		maintainer:     p.Maintainer,
		commissionSvc:  p.CommissionSvc,
		hotelRepo:      p.HotelRepo,
		auditRetention: retention,
		locker:         p.Locker,
		metrics:        p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx = requestmeta.WithActor(ctx, string(auditdomain.ActorTypeSystem), "scheduler")
	log := s.log.With(zap.String("job", name))

	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, "scheduler:job:"+name, s.cfg.LockTTL)
		if err != nil {
			log.Warn("job lock unavailable, running without exclusion", zap.Error(err))
		} else if !ok {
			log.Debug("job held by another instance, skipping")
			return nil
		} else {
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), "scheduler:job:"+name, token); err != nil {
					log.Warn("job lock release failed", zap.Error(err))
				}
			}()
		}
	}

	err := fn(ctx)
	s.metrics.RecordSchedulerJob(ctx, name, time.Since(start), err)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out", zap.Duration("timeout", s.cfg.JobTimeout), zap.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// RunOnce executes every enabled job once, joining their errors.
func (s *Scheduler) RunOnce(parent context.Context) error {
	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"audit_purge", s.AuditPurgeJob},
		{"search_reindex", s.SearchReindexJob},
		{"view_refresh", s.ViewRefreshJob},
		{"commission_backfill", s.CommissionBackfillJob},
	}

	var err error
	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// isJobEnabled treats an empty allowlist as "everything enabled".
func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// AuditPurgeJob deletes audit entries past retention in bounded batches.
func (s *Scheduler) AuditPurgeJob(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.auditRetention)
	deleted, err := s.auditSvc.Purge(ctx, cutoff, s.cfg.AuditPurgeBatch)
	if deleted > 0 {
		s.log.Info("audit entries purged",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return err
}

// SearchReindexJob repairs index entries that fell behind their hotel rows.
func (s *Scheduler) SearchReindexJob(ctx context.Context) error {
	reindexed, err := s.maintainer.ReindexStale(ctx, s.cfg.ReindexBatch)
	if reindexed > 0 {
		s.log.Info("stale index entries rebuilt", zap.Int("reindexed", reindexed))
	}
	return err
}

// ViewRefreshJob recomputes the recent-booking popularity counters the
// search ranking reads.
func (s *Scheduler) ViewRefreshJob(ctx context.Context) error {
	since := s.clock.Now().Add(-s.cfg.RecentWindow)
	updated, err := s.hotelRepo.RefreshRecentBookings(ctx, s.db, since)
	if updated > 0 {
		s.log.Info("recent booking counters refreshed", zap.Int64("hotels", updated))
	}
	return err
}

// CommissionBackfillJob computes commissions for paid bookings that lack one.
func (s *Scheduler) CommissionBackfillJob(ctx context.Context) error {
	computed, err := s.commissionSvc.BackfillMissing(ctx, s.cfg.BackfillBatch)
	if computed > 0 {
		s.log.Info("missing commissions computed", zap.Int("commissions", computed))
	}
	return err
}
