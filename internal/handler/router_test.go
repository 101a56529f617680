package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/controller"
	appErrors "github.com/unclebandit/advocacy-backend/internal/errors"
	"github.com/unclebandit/advocacy-backend/internal/handler"
	"github.com/unclebandit/advocacy-backend/internal/model"
	"github.com/unclebandit/advocacy-backend/internal/service"
)

type MockCampaignRepo struct {
	campaigns []*model.Campaign
}

func (m *MockCampaignRepo) find(keep func(*model.Campaign) bool) []*model.Campaign {
	out := []*model.Campaign{}
	for _, c := range m.campaigns {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

func (m *MockCampaignRepo) Create(context.Context, *model.Campaign) error { return nil }
func (m *MockCampaignRepo) Update(context.Context, *model.Campaign) error { return nil }
func (m *MockCampaignRepo) Delete(context.Context, int) error             { return nil }

func (m *MockCampaignRepo) GetByID(_ context.Context, id int) (*model.Campaign, error) {
	found := m.find(func(c *model.Campaign) bool { return c.ID == id })
	if len(found) == 0 {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return found[0], nil
}

func (m *MockCampaignRepo) ListByOwner(_ context.Context, o model.Owner) ([]*model.Campaign, error) {
	return m.find(func(c *model.Campaign) bool { return c.Owner() == o }), nil
}

func (m *MockCampaignRepo) ListByBill(_ context.Context, billType, billNumber string) ([]*model.Campaign, error) {
	key := model.BillKey(billType, billNumber)
	return m.find(func(c *model.Campaign) bool { return c.BillKey() == key }), nil
}

func (m *MockCampaignRepo) ListByUser(_ context.Context, userID string) ([]*model.Campaign, error) {
	return m.find(func(c *model.Campaign) bool { return c.UserID == userID }), nil
}

type MockActionRepo struct{}

func (MockActionRepo) RecordAction(context.Context, *model.ParticipantAction) error { return nil }
func (MockActionRepo) Tallies(context.Context, int) (*model.Tallies, error) {
	return &model.Tallies{Counts: map[string]map[string]int{}}, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	created := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	repo := &MockCampaignRepo{campaigns: []*model.Campaign{
		{ID: 1, GroupSlug: "acme", UserID: "u1", CampaignType: model.TypeLegislation, Position: "Support",
			BillType: "hr", BillNumber: "1", BillStatus: 2, CreatedAt: created},
		{ID: 2, BioguideID: "S000123", CampaignType: model.TypeLegislation, Position: "Oppose",
			BillType: "hr", BillNumber: "1", CreatedAt: created.Add(time.Hour)},
	}}
	seeds, err := service.DefaultSeeds()
	require.NoError(t, err)

	svc := &service.CampaignService{
		CampaignRepo: repo,
		Loader:       &service.CampaignLoader{Repo: repo, Seeds: seeds},
		Resolver:     &service.CrossReferenceResolver{Repo: repo},
		Aggregator:   &service.DemographicsAggregator{Actions: MockActionRepo{}},
	}
	router := handler.NewRouter(
		&controller.CampaignController{CampaignService: svc},
		&handler.CampaignHandler{Service: svc},
		nil,
		[]string{"http://localhost:3000"},
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newServer(t)
	resp := getJSON(t, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestListCampaignsByOwner(t *testing.T) {
	srv := newServer(t)

	var live service.LoadResult
	getJSON(t, srv.URL+"/api/campaigns?groupSlug=acme", &live)
	assert.Equal(t, service.SourceLive, live.Source)
	require.Len(t, live.Campaigns, 1)
	assert.Equal(t, 1, live.Campaigns[0].ID)

	var fallback service.LoadResult
	getJSON(t, srv.URL+"/api/campaigns?groupSlug=newcomer", &fallback)
	assert.Equal(t, service.SourceFallback, fallback.Source)
	assert.NotEmpty(t, fallback.Campaigns)

	resp := getJSON(t, srv.URL+"/api/campaigns?groupSlug=a&bioguideId=b", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListCampaignsByUser(t *testing.T) {
	srv := newServer(t)
	var body struct {
		Campaigns []model.Campaign `json:"campaigns"`
	}
	getJSON(t, srv.URL+"/api/campaigns?userId=u1", &body)
	require.Len(t, body.Campaigns, 1)
	assert.Equal(t, "acme", body.Campaigns[0].GroupSlug)
}

func TestOverviewRoute(t *testing.T) {
	srv := newServer(t)

	var ov struct {
		Source          string                     `json:"source"`
		Campaigns       []model.Campaign           `json:"campaigns"`
		CrossReferences map[string][]model.Sibling `json:"crossReferences"`
	}
	getJSON(t, srv.URL+"/api/campaigns/overview?groupSlug=acme", &ov)

	assert.Equal(t, service.SourceLive, ov.Source)
	require.Len(t, ov.CrossReferences["hr-1"], 1)
	assert.Equal(t, "S000123", ov.CrossReferences["hr-1"][0].BioguideID)
}

func TestGetCampaignAndDemographics(t *testing.T) {
	srv := newServer(t)

	var c model.Campaign
	getJSON(t, srv.URL+"/api/campaigns/1", &c)
	assert.Equal(t, "hr", c.BillType)

	var snap struct {
		DataSource     string                    `json:"dataSource"`
		BillStatusText string                    `json:"billStatusText"`
		Categories     map[string][]model.Bucket `json:"categories"`
	}
	getJSON(t, srv.URL+"/api/campaigns/1/demographics", &snap)
	assert.Equal(t, model.DataSourceSimulated, snap.DataSource)
	assert.Equal(t, "Engrossed", snap.BillStatusText)
	assert.Len(t, snap.Categories, len(model.CategoryOrder))

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/campaigns/42", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/campaigns/x/demographics", nil).StatusCode)
}

func TestBillCampaignsRoute(t *testing.T) {
	srv := newServer(t)

	var body struct {
		Bill      string           `json:"bill"`
		Campaigns []model.Campaign `json:"campaigns"`
	}
	getJSON(t, srv.URL+"/api/bills/HR/1/campaigns", &body)
	assert.Equal(t, "hr-1", body.Bill)
	require.Len(t, body.Campaigns, 2)
	assert.Equal(t, 2, body.Campaigns[0].ID)
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/campaigns", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecoverMiddleware(t *testing.T) {
	h := handler.Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFallbackSeedDemographics(t *testing.T) {
	srv := newServer(t)

	var page service.LoadResult
	getJSON(t, srv.URL+"/api/campaigns?groupSlug=newcomer", &page)
	require.Equal(t, service.SourceFallback, page.Source)
	seed := page.Campaigns[0]
	require.True(t, seed.Seed)

	var snap struct {
		CampaignID int                       `json:"campaignId"`
		DataSource string                    `json:"dataSource"`
		Categories map[string][]model.Bucket `json:"categories"`
	}
	resp := getJSON(t, fmt.Sprintf("%s/api/campaigns/%d/demographics?groupSlug=newcomer", srv.URL, seed.ID), &snap)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, seed.ID, snap.CampaignID)
	assert.Equal(t, model.DataSourceSimulated, snap.DataSource)
	assert.Len(t, snap.Categories, len(model.CategoryOrder))

	resp = getJSON(t, fmt.Sprintf("%s/api/campaigns/%d/demographics", srv.URL, seed.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/api/campaigns/-99/demographics?groupSlug=newcomer", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
