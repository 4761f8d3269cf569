package outbox

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/logging"
)

type Scheduler struct {
	cron       *cron.Cron
	dispatcher *Dispatcher
	log        *zap.Logger
}

func NewScheduler(d *Dispatcher, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		dispatcher: d,
		log:        log,
	}
}

// Start registers the drain job on schedule (cron syntax or "@every 15s") and
// starts the scheduler.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.run)
	if err != nil {
		return err
	}
	s.log.Info("outbox scheduler started", zap.String("schedule", schedule))
	s.cron.Start()
	return nil
}

// Stop waits for a running drain to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx := logging.WithContext(context.Background(), s.log)
	st, err := s.dispatcher.Drain(ctx)
	if err != nil {
		s.log.Error("outbox drain failed", zap.Error(err))
		return
	}
	if st != (Stats{}) {
		s.log.Debug("outbox drain finished", zap.Any("stats", st))
	}
}
