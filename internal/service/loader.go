// internal/service/loader.go
package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/model"
	"github.com/unclebandit/advocacy-backend/internal/repository"
)

// Load sources
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
	SourceError    = "error"
)

type LoadResult struct {
	Campaigns []model.Campaign `json:"campaigns"`
	Source    string           `json:"source"`
}

// CampaignLoader returns an owner's campaigns, or the static seed set when the
// owner has none stored. The two are never merged.
type CampaignLoader struct {
	Repo   repository.CampaignRepositoryInterface
	Seeds  *SeedSet
	Logger *zap.Logger
}

// Load never fails: a store error is logged and yields an empty list.
func (l *CampaignLoader) Load(ctx context.Context, owner model.Owner) LoadResult {
	logger := l.logger()

	ptrs, err := l.Repo.ListByOwner(ctx, owner)
	if err != nil {
		logger.Error("failed to load campaigns", zap.String("owner", owner.String()), zap.Error(err))
		return LoadResult{Campaigns: []model.Campaign{}, Source: SourceError}
	}

	if len(ptrs) == 0 {
		seeds := l.Seeds.For(owner)
		SortCampaigns(seeds)
		logger.Debug("no stored campaigns, using fallback seeds",
			zap.String("owner", owner.String()), zap.Int("count", len(seeds)))
		return LoadResult{Campaigns: seeds, Source: SourceFallback}
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}
	SortCampaigns(campaigns)
	return LoadResult{Campaigns: campaigns, Source: SourceLive}
}

// SortCampaigns puts non-Issue campaigns ahead of Issue campaigns, newest first
// within each group. Equal timestamps fall back to higher ID first.
func SortCampaigns(cs []model.Campaign) {
	sort.SliceStable(cs, func(i, j int) bool {
		ii, ji := cs[i].CampaignType == model.TypeIssue, cs[j].CampaignType == model.TypeIssue
		if ii != ji {
			return !ii
		}
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID > cs[j].ID
	})
}

func (l *CampaignLoader) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}
