package dashboard

import (
	"context"
	"time"
)

// RefreshJob runs a render cycle on the scheduler
type RefreshJob struct {
	service *Service
	timeout time.Duration
}

// NewRefreshJob creates a refresh job; timeout bounds one cycle
func NewRefreshJob(service *Service, timeout time.Duration) *RefreshJob {
	return &RefreshJob{service: service, timeout: timeout}
}

// Run executes one render cycle
func (j *RefreshJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	_, err := j.service.Refresh(ctx)
	return err
}

// Name returns the job name for scheduling and logging
func (j *RefreshJob) Name() string {
	return "sector_refresh"
}
