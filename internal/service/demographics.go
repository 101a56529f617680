// internal/service/demographics.go
package service

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/cache"
	"github.com/unclebandit/advocacy-backend/internal/model"
	"github.com/unclebandit/advocacy-backend/internal/repository"
)

const (
	defaultMinSample = 30
	simulatedJitter  = 0.15
	otherLabel       = "Other"
)

// baseWeights is a rough national profile used for simulated snapshots.
// Each slice lines up with model.CategoryLabels.
var baseWeights = map[string][]float64{
	model.CategoryAge:          {12, 18, 17, 16, 17, 20},
	model.CategoryGender:       {51, 47, 2},
	model.CategoryParty:        {33, 30, 32, 5},
	model.CategoryEducation:    {36, 28, 23, 13},
	model.CategoryIncome:       {38, 30, 16, 16},
	model.CategoryEthnicity:    {60, 13, 18, 6, 3},
	model.CategoryGeography:    {17, 21, 38, 24},
	model.CategoryHousehold:    {28, 30, 30, 12},
	model.CategoryVoterHistory: {35, 30, 25, 10},
}

type DemographicsAggregator struct {
	Actions   repository.ActionRepositoryInterface
	Cache     cache.SnapshotCache
	MinSample int
	Logger    *zap.Logger
	Now       func() time.Time
}

// Aggregate builds the demographic snapshot for c. Below MinSample recorded
// actions the snapshot is simulated.
func (a *DemographicsAggregator) Aggregate(ctx context.Context, c *model.Campaign) *model.DemographicSnapshot {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if a.Cache != nil {
		cached, err := a.Cache.Get(ctx, c.ID)
		if err != nil {
			logger.Warn("demographics cache read failed", zap.Int("campaign_id", c.ID), zap.Error(err))
		} else if cached != nil {
			return cached
		}
	}

	snap := &model.DemographicSnapshot{
		CampaignID:   c.ID,
		SupportCount: c.SupportCount,
		OpposeCount:  c.OpposeCount,
		GeneratedAt:  a.now(),
	}

	minSample := a.MinSample
	if minSample <= 0 {
		minSample = defaultMinSample
	}

	var tallies *model.Tallies
	if a.Actions != nil && !c.Seed {
		var err error
		tallies, err = a.Actions.Tallies(ctx, c.ID)
		if err != nil {
			logger.Error("failed to load tallies, simulating", zap.Int("campaign_id", c.ID), zap.Error(err))
			tallies = nil
		}
	}

	if tallies != nil {
		snap.SampleSize = tallies.SampleSize
	}
	if tallies != nil && tallies.SampleSize >= minSample {
		snap.DataSource = model.DataSourceReal
		snap.Categories = realCategories(tallies)
	} else {
		snap.DataSource = model.DataSourceSimulated
		snap.Categories = simulatedCategories(c)
	}

	if a.Cache != nil && !c.Seed {
		if err := a.Cache.Set(ctx, snap); err != nil {
			logger.Warn("demographics cache write failed", zap.Int("campaign_id", c.ID), zap.Error(err))
		}
	}
	return snap
}

func (a *DemographicsAggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func realCategories(t *model.Tallies) map[string][]model.Bucket {
	out := make(map[string][]model.Bucket, len(model.CategoryOrder))
	for _, cat := range model.CategoryOrder {
		labels := model.CategoryLabels[cat]
		weights := make([]float64, len(labels))
		for label, count := range t.Counts[cat] {
			if cat == model.CategoryGeography {
				label = RegionForZip(label)
				if label == "" {
					continue
				}
			}
			if i := labelIndex(labels, label); i >= 0 {
				weights[i] += float64(count)
			}
		}
		out[cat] = buckets(labels, percentages(weights))
	}
	return out
}

// labelIndex matches case-insensitively and folds unknown labels into "Other"
// when the category has one.
func labelIndex(labels []string, label string) int {
	other := -1
	for i, l := range labels {
		if strings.EqualFold(l, strings.TrimSpace(label)) {
			return i
		}
		if l == otherLabel {
			other = i
		}
	}
	return other
}

func simulatedCategories(c *model.Campaign) map[string][]model.Bucket {
	rng := rand.New(rand.NewSource(int64(c.ID)))

	ratio := 0.5
	if total := c.SupportCount + c.OpposeCount; total > 0 {
		ratio = float64(c.SupportCount) / float64(total)
	}
	tilt := ratio - 0.5

	out := make(map[string][]model.Bucket, len(model.CategoryOrder))
	for _, cat := range model.CategoryOrder {
		labels := model.CategoryLabels[cat]
		weights := append([]float64(nil), baseWeights[cat]...)

		switch cat {
		case model.CategoryAge:
			// support skews younger
			for i := range weights {
				if i < len(weights)/2 {
					weights[i] *= 1 + tilt
				} else {
					weights[i] *= 1 - tilt
				}
			}
		case model.CategoryParty:
			weights[0] *= 1 + tilt
			weights[1] *= 1 - tilt
		case model.CategoryVoterHistory:
			weights[0] *= 1 + tilt/2
			weights[len(weights)-1] *= 1 - tilt/2
		}

		for i := range weights {
			weights[i] *= 1 + (rng.Float64()*2-1)*simulatedJitter
		}
		out[cat] = buckets(labels, percentages(weights))
	}
	return out
}

func buckets(labels []string, pcts []float64) []model.Bucket {
	out := make([]model.Bucket, len(labels))
	for i, l := range labels {
		out[i] = model.Bucket{Label: l, Percent: pcts[i]}
	}
	return out
}

// percentages converts weights to one-decimal percentages summing to exactly
// 100.0 using largest remainder. All-zero weights give all zeros.
func percentages(weights []float64) []float64 {
	out := make([]float64, len(weights))
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return out
	}

	const units = 1000
	tenths := make([]int, len(weights))
	rems := make([]float64, len(weights))
	assigned := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		exact := w / total * units
		tenths[i] = int(math.Floor(exact))
		rems[i] = exact - float64(tenths[i])
		assigned += tenths[i]
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return rems[order[x]] > rems[order[y]] })
	for k := 0; assigned < units; k++ {
		tenths[order[k%len(order)]]++
		assigned++
	}

	for i, t := range tenths {
		out[i] = float64(t) / 10
	}
	return out
}
