package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/cache"
	appErrors "github.com/unclebandit/advocacy-backend/internal/errors"
	"github.com/unclebandit/advocacy-backend/internal/events"
	"github.com/unclebandit/advocacy-backend/internal/queue"
	"github.com/unclebandit/advocacy-backend/internal/repository"
)

// ActionWorker records queued participant actions
type ActionWorker struct {
	Actions repository.ActionRepositoryInterface
	Cache   cache.SnapshotCache
	Events  events.Publisher
	Logger  *zap.Logger
}

// Process stores one action. A returned error means the job should be retried;
// a deleted campaign is not retryable and is dropped.
func (w *ActionWorker) Process(ctx context.Context, job queue.ActionJob) error {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := job.Action
	if err := w.Actions.RecordAction(ctx, &a); err != nil {
		if appErrors.IsNotFound(err) || appErrors.IsBadRequest(err) {
			logger.Warn("dropping action", zap.Int("campaign_id", a.CampaignID), zap.Error(err))
			return nil
		}
		return err
	}

	if w.Cache != nil {
		if err := w.Cache.Invalidate(ctx, a.CampaignID); err != nil {
			logger.Warn("failed to invalidate demographics", zap.Int("campaign_id", a.CampaignID), zap.Error(err))
		}
	}

	if w.Events != nil {
		e := events.New(events.CampaignActionRecorded, a.CampaignID, map[string]any{
			"actionId": a.ID,
			"position": a.Position,
		})
		if err := w.Events.Publish(ctx, e); err != nil {
			logger.Warn("failed to publish event", zap.String("type", e.Type), zap.Error(err))
		}
	}

	logger.Info("action recorded", zap.Int("campaign_id", a.CampaignID), zap.Int("action_id", a.ID), zap.String("position", a.Position))
	return nil
}
