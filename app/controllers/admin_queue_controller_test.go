package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/access"
	"github.com/celumarket/celumarket/internal/pkg/jobqueue"
	"github.com/celumarket/celumarket/internal/pkg/mail"
)

func withQueueRoutes(t *testing.T, h *harness) (*jobqueue.Queue, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	queue := jobqueue.NewQueue(client, 1)
	ctrl := NewAdminQueueController(access.NewGuard(h.repos.User), queue, repository.NewQueueRepository(client))
	h.app.Get("/api/admin/queue", ctrl.HandleStats)
	h.app.Delete("/api/admin/queue/failed", ctrl.HandlePurgeFailed)
	return queue, client
}

func TestAdminQueueStats(t *testing.T) {
	h := newHarness(t)
	queue, _ := withQueueRoutes(t, h)

	_, err := queue.EnqueueEmail(context.Background(), mail.TemplateWelcome, "ana@celumarket.test", mail.Data{Name: "Ana"})
	require.NoError(t, err)

	resp, body := h.request(t, http.MethodGet, "/api/admin/queue", adminEmail, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["pending"])
	assert.Equal(t, float64(0), body["processing"])

	resp, _ = h.request(t, http.MethodGet, "/api/admin/queue", sellerEmail, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminQueuePurgeFailed(t *testing.T) {
	h := newHarness(t)
	queue, client := withQueueRoutes(t, h)
	ctx := context.Background()

	pending, err := queue.EnqueueEmail(ctx, mail.TemplateWelcome, "ana@celumarket.test", mail.Data{})
	require.NoError(t, err)
	failed, err := json.Marshal(jobqueue.Job{ID: "dead", Type: jobqueue.JobTypeSendEmail, Status: jobqueue.JobStatusFailed})
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, jobqueue.JobKeyPrefix+"dead", failed, 0).Err())

	resp, _ := h.request(t, http.MethodDelete, "/api/admin/queue/failed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := h.request(t, http.MethodDelete, "/api/admin/queue/failed", adminEmail, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["deleted"])

	_, err = queue.GetJob(ctx, "dead")
	assert.ErrorIs(t, err, redis.Nil)
	_, err = queue.GetJob(ctx, pending.ID)
	assert.NoError(t, err)
}
