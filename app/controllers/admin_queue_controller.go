package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/access"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/jobqueue"
	"github.com/celumarket/celumarket/internal/pkg/usercontext"
)

// AdminQueueController reports on the background job queue.
type AdminQueueController struct {
	guard     *access.Guard
	queue     *jobqueue.Queue
	queueRepo repository.QueueRepository
}

// NewAdminQueueController creates a new admin queue controller with repository
func NewAdminQueueController(guard *access.Guard, queue *jobqueue.Queue, queueRepo repository.QueueRepository) *AdminQueueController {
	return &AdminQueueController{
		guard:     guard,
		queue:     queue,
		queueRepo: queueRepo,
	}
}

// HandleStats returns queue lengths and per-status job counters.
func (aqc *AdminQueueController) HandleStats(c *fiber.Ctx) error {
	if _, err := aqc.guard.RequireAdmin(usercontext.GetEmail(c)); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	stats, err := aqc.queue.GetJobStats(ctx)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to load job stats", err))
	}
	pending, err := aqc.queueRepo.ListLength(ctx, jobqueue.JobQueueKey)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to read queue length", err))
	}
	processing, err := aqc.queueRepo.ListLength(ctx, jobqueue.JobProcessingKey)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to read processing length", err))
	}

	return c.JSON(fiber.Map{
		"pending":    pending,
		"processing": processing,
		"stats":      stats,
	})
}

// HandlePurgeFailed removes the records of jobs that exhausted their retries.
func (aqc *AdminQueueController) HandlePurgeFailed(c *fiber.Ctx) error {
	if _, err := aqc.guard.RequireAdmin(usercontext.GetEmail(c)); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	keys, err := aqc.queueRepo.ScanKeys(ctx, jobqueue.JobKeyPrefix+"*")
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to scan jobs", err))
	}

	var failed []string
	for _, key := range keys {
		job, err := aqc.queue.GetJob(ctx, strings.TrimPrefix(key, jobqueue.JobKeyPrefix))
		if err != nil {
			continue
		}
		if job.Status == jobqueue.JobStatusFailed {
			failed = append(failed, key)
		}
	}

	deleted, err := aqc.queueRepo.DeleteKeys(ctx, failed)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to delete jobs", err))
	}
	log.Infof("[Admin] purged %d failed jobs", deleted)

	return c.JSON(fiber.Map{"success": true, "deleted": deleted})
}
