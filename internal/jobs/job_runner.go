package jobs

import (
	"time"

	"sharebite/internal/config"
	"sharebite/internal/logger"
	"sharebite/internal/metrics"
	"sharebite/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Food  service.FoodService
	Admin service.AdminService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) {
	result := "success"
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			result = "panic"
		}
		metrics.JobRuns.WithLabelValues(jobName, result).Inc()
	}()

	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(); err != nil {
		result = "error"
		logger.Error("Job failed", "job", jobName, "error", err)
		return
	}
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExpireFoodPosts()
	jr.SendPendingVerificationDigest()
}
