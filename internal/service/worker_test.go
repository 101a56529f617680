package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/advocacy-backend/internal/errors"
	"github.com/unclebandit/advocacy-backend/internal/events"
	"github.com/unclebandit/advocacy-backend/internal/model"
	"github.com/unclebandit/advocacy-backend/internal/queue"
	"github.com/unclebandit/advocacy-backend/internal/service"
)

func TestWorkerRecordsAction(t *testing.T) {
	actions := &MockActionRepo{}
	cache := NewMockCache()
	pub := &MockPublisher{}
	w := &service.ActionWorker{Actions: actions, Cache: cache, Events: pub}

	err := w.Process(context.Background(), queue.ActionJob{Action: model.ParticipantAction{CampaignID: 3, Position: model.PositionOppose}})

	require.NoError(t, err)
	require.Len(t, actions.Recorded, 1)
	assert.Equal(t, []int{3}, cache.Invalidated)
	require.Len(t, pub.Events, 1)
	assert.Equal(t, events.CampaignActionRecorded, pub.Events[0].Type)
	assert.Equal(t, 3, pub.Events[0].CampaignID)
}

func TestWorkerDropsDeletedCampaign(t *testing.T) {
	actions := &MockActionRepo{RecordErr: appErrors.NewCampaignNotFound(3)}
	pub := &MockPublisher{}
	w := &service.ActionWorker{Actions: actions, Events: pub}

	err := w.Process(context.Background(), queue.ActionJob{Action: model.ParticipantAction{CampaignID: 3, Position: model.PositionSupport}})

	assert.NoError(t, err)
	assert.Empty(t, pub.Events)
}

func TestWorkerReturnsTransientErrors(t *testing.T) {
	actions := &MockActionRepo{RecordErr: errors.New("connection reset")}
	cache := NewMockCache()
	w := &service.ActionWorker{Actions: actions, Cache: cache}

	err := w.Process(context.Background(), queue.ActionJob{Action: model.ParticipantAction{CampaignID: 3, Position: model.PositionSupport}})

	assert.Error(t, err)
	assert.Empty(t, cache.Invalidated)
}
