package scheduler

import (
	"context"
	"log"
	"time"

	"bin_collection_notifier/internal/app"
	"bin_collection_notifier/internal/domain/notification"

	"github.com/robfig/cron/v3"
)

// RunInvoker is what the scheduler triggers; app.RunService satisfies it.
type RunInvoker interface {
	Run(ctx context.Context, opts app.RunOptions) (*notification.RunSummary, error)
}

// Each scheduled run gets a hard budget; polling waits inside the run all
// honor this deadline.
const runBudget = 10 * time.Minute

// RunScheduler fires the notification run on a cron spec and forwards the
// summary to the optional reporter.
type RunScheduler struct {
	cronEngine *cron.Cron
	invoker    RunInvoker
	reporter   notification.Reporter // may be nil
	logger     *log.Logger
	cronSpec   string
}

func NewRunScheduler(invoker RunInvoker, reporter notification.Reporter, logger *log.Logger, cronSpec string, loc *time.Location) *RunScheduler {
	return &RunScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		invoker:    invoker,
		reporter:   reporter,
		logger:     logger,
		cronSpec:   cronSpec,
	}
}

func (s *RunScheduler) Start() {
	s.logger.Println("INFO: Starting run scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Println("INFO: Cron job triggered for scheduled notification run.")
		ctx, cancel := context.WithTimeout(context.Background(), runBudget)
		defer cancel()
		summary, err := s.invoker.Run(ctx, app.RunOptions{})
		if err != nil {
			s.logger.Printf("ERROR: Scheduled run failed: %v", err)
			return
		}
		s.report(summary)
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add notification run cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Println("INFO: Run scheduler started.")
}

func (s *RunScheduler) report(summary *notification.RunSummary) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.ReportSummary(summary); err != nil {
		s.logger.Printf("ERROR: Could not deliver run summary: %v", err)
	}
}

func (s *RunScheduler) Stop() {
	s.logger.Println("INFO: Stopping run scheduler...")
	ctx := s.cronEngine.Stop() // Waits for a running job to finish.
	<-ctx.Done()
	s.logger.Println("INFO: Run scheduler gracefully stopped.")
}
