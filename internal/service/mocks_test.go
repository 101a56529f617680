package service_test

import (
	"context"
	"fmt"
	"sync"

	appErrors "github.com/unclebandit/advocacy-backend/internal/errors"
	"github.com/unclebandit/advocacy-backend/internal/events"
	"github.com/unclebandit/advocacy-backend/internal/model"
)

// MockCampaignRepo keeps campaigns in memory.
type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
	nextID    int

	OwnerErr  error
	BillErrs  map[string]error
	BillCalls map[string]int
}

func NewMockCampaignRepo(cs ...*model.Campaign) *MockCampaignRepo {
	m := &MockCampaignRepo{
		campaigns: map[int]*model.Campaign{},
		nextID:    1,
		BillErrs:  map[string]error{},
		BillCalls: map[string]int{},
	}
	for _, c := range cs {
		m.campaigns[c.ID] = c
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
	return m
}

func (m *MockCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MockCampaignRepo) GetByID(_ context.Context, id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *MockCampaignRepo) Update(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[c.ID]; !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MockCampaignRepo) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[id]; !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	delete(m.campaigns, id)
	return nil
}

func (m *MockCampaignRepo) ListByOwner(_ context.Context, owner model.Owner) ([]*model.Campaign, error) {
	if m.OwnerErr != nil {
		return nil, m.OwnerErr
	}
	return m.filter(func(c *model.Campaign) bool { return c.Owner() == owner }), nil
}

func (m *MockCampaignRepo) ListByBill(_ context.Context, billType, billNumber string) ([]*model.Campaign, error) {
	key := model.BillKey(billType, billNumber)
	m.mu.Lock()
	m.BillCalls[key]++
	err := m.BillErrs[key]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.filter(func(c *model.Campaign) bool { return c.BillKey() == key }), nil
}

func (m *MockCampaignRepo) ListByUser(_ context.Context, userID string) ([]*model.Campaign, error) {
	return m.filter(func(c *model.Campaign) bool { return c.UserID == userID }), nil
}

func (m *MockCampaignRepo) filter(keep func(*model.Campaign) bool) []*model.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Campaign{}
	for _, c := range m.campaigns {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

// MockActionRepo returns fixed tallies and records actions in a slice.
type MockActionRepo struct {
	mu        sync.Mutex
	Recorded  []model.ParticipantAction
	RecordErr error

	TalliesByCampaign map[int]*model.Tallies
	TalliesErr        error
	TalliesCalls      int
}

func (m *MockActionRepo) RecordAction(_ context.Context, a *model.ParticipantAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return m.RecordErr
	}
	a.ID = len(m.Recorded) + 1
	m.Recorded = append(m.Recorded, *a)
	return nil
}

func (m *MockActionRepo) Tallies(_ context.Context, campaignID int) (*model.Tallies, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TalliesCalls++
	if m.TalliesErr != nil {
		return nil, m.TalliesErr
	}
	if t, ok := m.TalliesByCampaign[campaignID]; ok {
		return t, nil
	}
	return &model.Tallies{Counts: map[string]map[string]int{}}, nil
}

// MockCache is a map-backed SnapshotCache.
type MockCache struct {
	mu          sync.Mutex
	Snapshots   map[int]*model.DemographicSnapshot
	Invalidated []int
	GetErr      error
}

func NewMockCache() *MockCache {
	return &MockCache{Snapshots: map[int]*model.DemographicSnapshot{}}
}

func (m *MockCache) Get(_ context.Context, id int) (*model.DemographicSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Snapshots[id], nil
}

func (m *MockCache) Set(_ context.Context, s *model.DemographicSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots[s.CampaignID] = s
	return nil
}

func (m *MockCache) Invalidate(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Snapshots, id)
	m.Invalidated = append(m.Invalidated, id)
	return nil
}

// MockPublisher records events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
}

func (m *MockPublisher) Publish(_ context.Context, e events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, e)
	return m.Err
}

func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}

// MockQueue captures published payloads without delivering them.
type MockQueue struct {
	mu        sync.Mutex
	Published []any
	Err       error
}

func (m *MockQueue) Publish(topic string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, payload)
	return nil
}

func (m *MockQueue) Subscribe(topic string, handler func(payload any) error) error {
	return fmt.Errorf("mock queue does not deliver")
}
