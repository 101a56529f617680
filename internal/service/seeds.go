// internal/service/seeds.go
package service

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unclebandit/advocacy-backend/internal/model"
)

//go:embed seeds/campaigns.yaml
var defaultSeedYAML []byte

type seedEntry struct {
	CampaignType string `yaml:"campaignType"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Position     string `yaml:"position"`
	BillType     string `yaml:"billType"`
	BillNumber   string `yaml:"billNumber"`
	BillTitle    string `yaml:"billTitle"`
	Congress     int    `yaml:"congress"`
	BillStatus   int    `yaml:"billStatus"`
	SupportCount int    `yaml:"supportCount"`
	OpposeCount  int    `yaml:"opposeCount"`
	CreatedAt    string `yaml:"createdAt"`
}

type seedFile struct {
	Default []seedEntry            `yaml:"default"`
	Owners  map[string][]seedEntry `yaml:"owners"`
}

// SeedSet is the static fallback list shown when an owner has no stored campaigns.
type SeedSet struct {
	defaults []model.Campaign
	byOwner  map[string][]model.Campaign
}

// DefaultSeeds parses the embedded seed file.
func DefaultSeeds() (*SeedSet, error) {
	return ParseSeeds(defaultSeedYAML)
}

func ParseSeeds(raw []byte) (*SeedSet, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	s := &SeedSet{byOwner: map[string][]model.Campaign{}}
	var err error
	if s.defaults, err = convertSeeds(f.Default); err != nil {
		return nil, err
	}
	for owner, entries := range f.Owners {
		if s.byOwner[owner], err = convertSeeds(entries); err != nil {
			return nil, fmt.Errorf("seeds for %s: %w", owner, err)
		}
	}
	return s, nil
}

func convertSeeds(entries []seedEntry) ([]model.Campaign, error) {
	out := make([]model.Campaign, 0, len(entries))
	for i, e := range entries {
		created, err := time.Parse(time.RFC3339, e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("seed %d createdAt: %w", i, err)
		}
		out = append(out, model.Campaign{
			ID:           -(i + 1),
			CampaignType: e.CampaignType,
			Title:        e.Title,
			Description:  e.Description,
			Position:     e.Position,
			BillType:     e.BillType,
			BillNumber:   e.BillNumber,
			BillTitle:    e.BillTitle,
			Congress:     e.Congress,
			BillStatus:   e.BillStatus,
			SupportCount: e.SupportCount,
			OpposeCount:  e.OpposeCount,
			CreatedAt:    created,
			Seed:         true,
		})
	}
	return out, nil
}

// Find returns the seed with id as shown to owner.
func (s *SeedSet) Find(owner model.Owner, id int) (*model.Campaign, bool) {
	for _, c := range s.For(owner) {
		if c.ID == id {
			return &c, true
		}
	}
	return nil, false
}

// For returns a fresh copy of the seeds for owner, re-owned to owner.
func (s *SeedSet) For(owner model.Owner) []model.Campaign {
	if s == nil {
		return []model.Campaign{}
	}
	src, ok := s.byOwner[owner.String()]
	if !ok {
		src = s.defaults
	}
	out := make([]model.Campaign, len(src))
	copy(out, src)
	for i := range out {
		out[i].SetOwner(owner)
	}
	return out
}
