package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/digitalogic/catalog/internal/email"
	"github.com/digitalogic/catalog/internal/pricing"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LogPruner deletes audit entries older than the retention window.
type LogPruner interface {
	Prune(ctx context.Context, retentionDays int) (int64, error)
}

// PriceRecalculator reprices the whole catalog against current rates.
type PriceRecalculator interface {
	RecalculateAll(ctx context.Context) (*pricing.RecalculateOutput, *rest.ApiErr)
}

type Config struct {
	// PruneCron uses 6 fields: seconds, minutes, hours, day of month, month,
	// day of week. Example: "0 30 2 * * *" runs at 2:30 AM every day.
	PruneCron        string
	LogRetentionDays int

	// RecalcCron is optional; empty disables the nightly repricing job.
	RecalcCron string
}

type Scheduler struct {
	cron            *cron.Cron
	pruner          LogPruner
	recalculator    PriceRecalculator
	logger          *zap.Logger
	email           email.Email
	alertRecipients []string
	config          Config
}

func NewScheduler(pruner LogPruner, recalculator PriceRecalculator, logger *zap.Logger, e email.Email, alertRecipients []string, config Config) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithSeconds()),
		pruner:          pruner,
		recalculator:    recalculator,
		logger:          logger,
		email:           e,
		alertRecipients: alertRecipients,
		config:          config,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.config.PruneCron, s.runPruneJob); err != nil {
		return fmt.Errorf("invalid prune cron expression: %w", err)
	}

	if s.config.RecalcCron != "" {
		if _, err := s.cron.AddFunc(s.config.RecalcCron, s.runRecalculateJob); err != nil {
			return fmt.Errorf("invalid recalculate cron expression: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("prune_cron", s.config.PruneCron),
		zap.String("recalc_cron", s.config.RecalcCron),
		zap.Int("retention_days", s.config.LogRetentionDays),
	)
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping scheduler")
	return s.cron.Stop()
}

func (s *Scheduler) runPruneJob() {
	s.logger.Info("starting audit log retention sweep")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	deleted, err := s.pruner.Prune(ctx, s.config.LogRetentionDays)
	if err != nil {
		s.notifyError("failed to prune audit logs", err)
		return
	}

	s.logger.Info("audit log retention sweep completed",
		zap.Int64("deleted", deleted),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *Scheduler) runRecalculateJob() {
	s.logger.Info("starting scheduled price recalculation")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, apiErr := s.recalculator.RecalculateAll(ctx)
	if apiErr != nil {
		s.notifyError("failed to recalculate prices", apiErr)
		return
	}

	s.logger.Info("scheduled price recalculation completed",
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)),
	)

	if result.Failed > 0 {
		s.sendFailureSummaryEmail(result)
	}
}

// RunRecalculateNow executes the repricing job immediately (for manual
// triggers).
func (s *Scheduler) RunRecalculateNow() {
	go s.runRecalculateJob()
}

func (s *Scheduler) sendFailureSummaryEmail(result *pricing.RecalculateOutput) {
	if len(s.alertRecipients) == 0 {
		s.logger.Warn("no alert recipients configured, skipping recalculation failure notification",
			zap.Int("failed", result.Failed),
		)
		return
	}

	subject := "Price recalculation completed with failures"

	text := fmt.Sprintf("The scheduled price recalculation finished with failures.\n\nTotal: %d\nSuccess: %d\nFailed: %d\n\n",
		result.Total, result.Success, result.Failed)
	for id, msg := range result.Errors {
		text += fmt.Sprintf("Product %d: %s\n", id, msg)
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; }
		table { border-collapse: collapse; width: 100%%; margin-top: 20px; }
		th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
		th { background-color: #f44336; color: white; }
		tr:nth-child(even) { background-color: #f2f2f2; }
	</style>
</head>
<body>
	<h2>Price recalculation completed with failures</h2>
	<p>Total: %d &middot; Success: %d &middot; Failed: %d</p>
	<table>
		<tr><th>Product ID</th><th>Error</th></tr>`,
		result.Total, result.Success, result.Failed)
	for id, msg := range result.Errors {
		html += fmt.Sprintf("<tr><td>%d</td><td>%s</td></tr>", id, msg)
	}
	html += `
	</table>
</body>
</html>`

	if err := s.email.Send(subject, text, html, s.alertRecipients); err != nil {
		s.logger.Error("failed to send recalculation failure email",
			zap.Error(err),
			zap.Int("failed", result.Failed),
		)
		return
	}

	s.logger.Info("recalculation failure email sent",
		zap.Int("failed", result.Failed),
		zap.Int("recipients_count", len(s.alertRecipients)),
	)
}

// notifyError logs the error and sends an email notification to alert
// recipients.
func (s *Scheduler) notifyError(context string, err error) {
	s.logger.Error(context, zap.Error(err))

	if len(s.alertRecipients) == 0 {
		return
	}

	subject := "Scheduler error - " + context
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	textBody := fmt.Sprintf("Context: %s\nError: %v\nTime: %s", context, err, timestamp)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; }
		.error-box { background-color: #ffebee; border-left: 4px solid #f44336; padding: 16px; margin: 20px 0; }
		.label { font-weight: bold; color: #333; }
		.value { color: #666; }
	</style>
</head>
<body>
	<h2 style="color: #f44336;">Scheduler error</h2>
	<div class="error-box">
		<p><span class="label">Context:</span> <span class="value">%s</span></p>
		<p><span class="label">Error:</span> <span class="value">%v</span></p>
		<p><span class="label">Time:</span> <span class="value">%s</span></p>
	</div>
</body>
</html>`, context, err, timestamp)

	if sendErr := s.email.Send(subject, textBody, htmlBody, s.alertRecipients); sendErr != nil {
		s.logger.Error("failed to send error notification email",
			zap.Error(sendErr),
			zap.String("original_error_context", context),
		)
	}
}
