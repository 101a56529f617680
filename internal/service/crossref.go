// internal/service/crossref.go
package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/advocacy-backend/internal/model"
	"github.com/unclebandit/advocacy-backend/internal/repository"
)

const defaultCrossRefConcurrency = 4

// CrossReferenceResolver finds other owners' campaigns on the bills an owner
// is working. It issues one store query per distinct bill and keeps no cache.
type CrossReferenceResolver struct {
	Repo        repository.CampaignRepositoryInterface
	Concurrency int
	Logger      *zap.Logger
}

type billRef struct {
	billType, billNumber string
}

// Resolve returns siblings keyed by "type-number". Every bill in campaigns gets
// a key, even when the lookup fails or finds nothing. Campaigns owned by owner
// are never listed.
func (r *CrossReferenceResolver) Resolve(ctx context.Context, owner model.Owner, campaigns []model.Campaign) map[string][]model.Sibling {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bills := map[string]billRef{}
	for i := range campaigns {
		c := &campaigns[i]
		if !c.HasBill() {
			continue
		}
		bills[c.BillKey()] = billRef{billType: c.BillType, billNumber: c.BillNumber}
	}

	result := make(map[string][]model.Sibling, len(bills))
	var mu sync.Mutex

	limit := r.Concurrency
	if limit < 1 {
		limit = defaultCrossRefConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for key, ref := range bills {
		key, ref := key, ref
		g.Go(func() error {
			siblings := []model.Sibling{}
			rows, err := r.Repo.ListByBill(ctx, ref.billType, ref.billNumber)
			if err != nil {
				logger.Warn("cross-reference lookup failed", zap.String("bill", key), zap.Error(err))
			}
			for _, c := range rows {
				if c.Owner() == owner {
					continue
				}
				siblings = append(siblings, model.Sibling{
					CampaignID:   c.ID,
					GroupSlug:    c.GroupSlug,
					BioguideID:   c.BioguideID,
					CampaignType: c.CampaignType,
					Position:     c.Position,
					SupportCount: c.SupportCount,
					OpposeCount:  c.OpposeCount,
					BillTitle:    c.BillTitle,
				})
			}

			mu.Lock()
			result[key] = siblings
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}
