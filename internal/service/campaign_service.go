// internal/service/campaign_service.go
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/cache"
	appErrors "github.com/unclebandit/advocacy-backend/internal/errors"
	"github.com/unclebandit/advocacy-backend/internal/events"
	"github.com/unclebandit/advocacy-backend/internal/model"
	"github.com/unclebandit/advocacy-backend/internal/queue"
	"github.com/unclebandit/advocacy-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Queue        queue.Queue
	Events       events.Publisher
	Cache        cache.SnapshotCache
	Loader       *CampaignLoader
	Resolver     *CrossReferenceResolver
	Aggregator   *DemographicsAggregator
	Logger       *zap.Logger
}

// CreateInput is the body of POST /api/campaigns.
type CreateInput struct {
	GroupSlug    string `json:"groupSlug"`
	BioguideID   string `json:"bioguideId"`
	UserID       string `json:"userId"`
	CampaignType string `json:"campaignType"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Position     string `json:"position"`
	BillType     string `json:"billType"`
	BillNumber   string `json:"billNumber"`
	BillTitle    string `json:"billTitle"`
	Congress     int    `json:"congress"`
	BillStatus   int    `json:"billStatus"`
}

// UpdateInput carries the editable fields; nil leaves a field unchanged.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Position    *string `json:"position"`
	BillTitle   *string `json:"billTitle"`
	BillStatus  *int    `json:"billStatus"`
}

// Overview is an owner's dashboard: their campaigns plus who else is working the same bills.
type Overview struct {
	LoadResult
	CrossReferences map[string][]model.Sibling `json:"crossReferences"`
}

// DemographicsView adds human-readable bill status to the snapshot response.
type DemographicsView struct {
	*model.DemographicSnapshot
	BillStatusText string `json:"billStatusText,omitempty"`
}

func (s *CampaignService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func normalizePosition(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case model.PositionSupport:
		return "Support"
	case model.PositionOppose:
		return "Oppose"
	}
	return strings.TrimSpace(p)
}

func (s *CampaignService) CreateCampaign(ctx context.Context, in CreateInput) (*model.Campaign, error) {
	c := &model.Campaign{
		GroupSlug:    strings.TrimSpace(in.GroupSlug),
		BioguideID:   strings.TrimSpace(in.BioguideID),
		UserID:       strings.TrimSpace(in.UserID),
		CampaignType: strings.TrimSpace(in.CampaignType),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Position:     normalizePosition(in.Position),
		BillType:     strings.ToLower(strings.TrimSpace(in.BillType)),
		BillNumber:   strings.TrimSpace(in.BillNumber),
		BillTitle:    strings.TrimSpace(in.BillTitle),
		Congress:     in.Congress,
		BillStatus:   in.BillStatus,
	}
	if !c.Owner().Valid() {
		return nil, appErrors.ErrInvalidOwner
	}
	if c.CampaignType == "" {
		c.CampaignType = model.TypeLegislation
	}
	if !model.IsKnownType(c.CampaignType) {
		return nil, appErrors.NewValidation("campaignType", "unknown campaign type "+c.CampaignType)
	}

	switch c.CampaignType {
	case model.TypeLegislation:
		if !c.HasBill() {
			return nil, appErrors.NewValidation("bill", "billType and billNumber are required for legislation")
		}
		if c.Position != "Support" && c.Position != "Oppose" {
			return nil, appErrors.NewValidation("position", "must be Support or Oppose")
		}
	case model.TypeIssue:
		if c.Title == "" {
			return nil, appErrors.NewValidation("title", "required for issue campaigns")
		}
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.CampaignCreated, c.ID, c))
	return c, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, id)
}

func (s *CampaignService) UpdateCampaign(ctx context.Context, id int, in UpdateInput) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Position != nil {
		c.Position = normalizePosition(*in.Position)
	}
	if in.BillTitle != nil {
		c.BillTitle = strings.TrimSpace(*in.BillTitle)
	}
	if in.BillStatus != nil {
		c.BillStatus = *in.BillStatus
	}

	if c.CampaignType == model.TypeLegislation && c.Position != "Support" && c.Position != "Oppose" {
		return nil, appErrors.NewValidation("position", "must be Support or Oppose")
	}
	if c.CampaignType == model.TypeIssue && c.Title == "" {
		return nil, appErrors.NewValidation("title", "required for issue campaigns")
	}

	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.CampaignUpdated, c.ID, c))
	return c, nil
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, id int) error {
	if err := s.CampaignRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, id); err != nil {
			s.logger().Warn("failed to invalidate demographics", zap.Int("campaign_id", id), zap.Error(err))
		}
	}
	s.publish(ctx, events.New(events.CampaignDeleted, id, nil))
	return nil
}

// ListForOwner returns the owner's campaigns via the loader (live or fallback).
func (s *CampaignService) ListForOwner(ctx context.Context, owner model.Owner) (LoadResult, error) {
	if !owner.Valid() {
		return LoadResult{}, appErrors.ErrInvalidOwner
	}
	return s.Loader.Load(ctx, owner), nil
}

func (s *CampaignService) ListForUser(ctx context.Context, userID string) ([]model.Campaign, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, appErrors.NewValidation("userId", "required")
	}
	ptrs, err := s.CampaignRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}
	SortCampaigns(campaigns)
	return campaigns, nil
}

// Overview loads the owner's campaigns and resolves cross-references for their bills.
func (s *CampaignService) Overview(ctx context.Context, owner model.Owner) (*Overview, error) {
	if !owner.Valid() {
		return nil, appErrors.ErrInvalidOwner
	}
	res := s.Loader.Load(ctx, owner)
	return &Overview{
		LoadResult:      res,
		CrossReferences: s.Resolver.Resolve(ctx, owner, res.Campaigns),
	}, nil
}

// CampaignsForBill lists every owner's campaigns on one bill, for the public bill page.
func (s *CampaignService) CampaignsForBill(ctx context.Context, billType, billNumber string) ([]model.Campaign, error) {
	billType = strings.ToLower(strings.TrimSpace(billType))
	billNumber = strings.TrimSpace(billNumber)
	if billType == "" || billNumber == "" {
		return nil, appErrors.NewValidation("bill", "billType and billNumber are required")
	}
	ptrs, err := s.CampaignRepo.ListByBill(ctx, billType, billNumber)
	if err != nil {
		return nil, err
	}
	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}
	SortCampaigns(campaigns)
	return campaigns, nil
}

// EnqueueAction validates a participant action and hands it to the action queue.
func (s *CampaignService) EnqueueAction(ctx context.Context, campaignID int, a model.ParticipantAction) error {
	a.Position = strings.ToLower(strings.TrimSpace(a.Position))
	if a.Position != model.PositionSupport && a.Position != model.PositionOppose {
		return appErrors.NewValidation("position", "must be support or oppose")
	}
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return err
	}
	a.CampaignID = campaignID

	if err := s.Queue.Publish(queue.TopicCampaignActions, queue.ActionJob{Action: a}); err != nil {
		s.logger().Error("failed to enqueue action", zap.Int("campaign_id", campaignID), zap.Error(err))
		return err
	}
	return nil
}

// Demographics returns the snapshot for a campaign. Negative ids are fallback
// seeds and are looked up for owner instead of in the store.
func (s *CampaignService) Demographics(ctx context.Context, id int, owner model.Owner) (*DemographicsView, error) {
	var c *model.Campaign
	if id < 0 {
		if !owner.Valid() {
			return nil, appErrors.ErrInvalidOwner
		}
		var ok bool
		if s.Loader != nil {
			c, ok = s.Loader.Seeds.Find(owner, id)
		}
		if !ok {
			return nil, appErrors.NewCampaignNotFound(id)
		}
	} else {
		var err error
		if c, err = s.CampaignRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	view := &DemographicsView{DemographicSnapshot: s.Aggregator.Aggregate(ctx, c)}
	if c.HasBill() {
		view.BillStatusText = BillStatusText(c.BillStatus)
	}
	return view, nil
}

func (s *CampaignService) publish(ctx context.Context, e events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, e); err != nil {
		s.logger().Warn("failed to publish event", zap.String("type", e.Type), zap.Int("campaign_id", e.CampaignID), zap.Error(err))
	}
}
