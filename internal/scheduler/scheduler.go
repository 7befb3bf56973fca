package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/agrichain/agrichain/internal/config"
	"github.com/agrichain/agrichain/internal/registry/product"
	"github.com/agrichain/agrichain/internal/repository/sheets"
	"github.com/agrichain/agrichain/internal/service/dashboard"
)

// Scheduler manages the defensive snapshot poll and the daily ledger export.
type Scheduler struct {
	cron         *cron.Cron
	dashboardSvc *dashboard.Service
	products     *product.Registry
	exporter     sheets.Exporter
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The exporter may be nil when
// the ledger export is not configured.
func NewScheduler(cfg config.Config, dashboardSvc *dashboard.Service, products *product.Registry, exporter sheets.Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Seconds-resolution parser: the poll runs every few seconds, which the
	// standard five-field cron cannot express.
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:         c,
		dashboardSvc: dashboardSvc,
		products:     products,
		exporter:     exporter,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	// The poll compensates for missed event deliveries and for external
	// processes writing the same store, which never notify this process.
	if _, err := s.cron.AddFunc(s.cfg.Sync.PollSchedule, s.refreshSnapshot); err != nil {
		s.logger.Error("failed to schedule snapshot poll", zap.Error(err))
	}

	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.Sync.ExportSchedule, s.exportLedger); err != nil {
			s.logger.Error("failed to schedule ledger export", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) refreshSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.dashboardSvc.Refresh(ctx)
}

func (s *Scheduler) exportLedger() {
	s.logger.Info("exporting product ledger")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	products := s.products.GetAllProducts(ctx)
	if err := s.exporter.ExportProducts(ctx, products); err != nil {
		s.logger.Error("failed to export product ledger", zap.Error(err))
		return
	}

	s.logger.Info("product ledger exported", zap.Int("products", len(products)))
}
