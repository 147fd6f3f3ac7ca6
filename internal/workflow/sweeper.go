package workflow

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper compensates executions abandoned mid-run, e.g. when the process died
// between two steps. Anything not terminal and idle for longer than StaleAfter
// is rolled back using the tokens its completed steps recorded.
type Sweeper struct {
	Engine     *Engine
	StaleAfter time.Duration
	BatchSize  int
	Logger     *logrus.Logger
}

func NewSweeper(engine *Engine, staleAfter time.Duration, logger *logrus.Logger) *Sweeper {
	if logger == nil {
		logger = engine.logger
	}
	return &Sweeper{Engine: engine, StaleAfter: staleAfter, BatchSize: 100, Logger: logger}
}

// Sweep runs one pass and returns how many executions it rolled back.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.Engine.now().Add(-s.StaleAfter)
	stale, err := s.Engine.store.ListStale(ctx, cutoff, s.BatchSize)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, exec := range stale {
		log := s.Logger.WithFields(logrus.Fields{"workflow": exec.Workflow, "execution_id": exec.ID})
		wf, lErr := s.Engine.lookup(exec.Workflow)
		if lErr != nil {
			log.WithError(lErr).Warn("stale execution for unregistered workflow")
			continue
		}
		exec.Status = StatusCompensating
		if exec.Error == "" {
			exec.Error = "abandoned"
		}
		log.Warn("compensating abandoned workflow execution")
		s.Engine.compensate(ctx, wf, exec, len(exec.Steps), log)
		n++
	}
	return n, nil
}

// Schedule registers the sweep on a cron spec such as "@every 5m" and starts the scheduler.
// Stop the returned cron to end it.
func (s *Sweeper) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if n, err := s.Sweep(ctx); err != nil {
			s.Logger.WithError(err).Warn("workflow sweep failed")
		} else if n > 0 {
			s.Logger.WithField("count", n).Info("workflow sweep compensated executions")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
