package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/advocacy-backend/internal/model"
	"github.com/unclebandit/advocacy-backend/internal/service"
)

func TestResolveExcludesOwnCampaigns(t *testing.T) {
	repo := NewMockCampaignRepo(
		&model.Campaign{ID: 1, GroupSlug: "acme", BillType: "hr", BillNumber: "1", Position: "Support"},
		&model.Campaign{ID: 2, GroupSlug: "acme", BillType: "hr", BillNumber: "1", Position: "Support"},
		&model.Campaign{ID: 3, GroupSlug: "sierra", BillType: "hr", BillNumber: "1", Position: "Oppose", SupportCount: 4, OpposeCount: 9},
		&model.Campaign{ID: 4, BioguideID: "S000123", BillType: "hr", BillNumber: "1", Position: "Support", BillTitle: "Lower Energy Costs Act"},
		&model.Campaign{ID: 5, GroupSlug: "sierra", BillType: "s", BillNumber: "5"},
	)
	owner := model.Owner{GroupSlug: "acme"}
	mine, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	input := make([]model.Campaign, len(mine))
	for i, c := range mine {
		input[i] = *c
	}

	r := &service.CrossReferenceResolver{Repo: repo, Concurrency: 2}
	out := r.Resolve(context.Background(), owner, input)

	require.Contains(t, out, "hr-1")
	require.Len(t, out["hr-1"], 2)
	for _, s := range out["hr-1"] {
		assert.NotEqual(t, "acme", s.GroupSlug)
		assert.Contains(t, []int{3, 4}, s.CampaignID)
		if s.CampaignID == 3 {
			assert.Equal(t, 4, s.SupportCount)
			assert.Equal(t, 9, s.OpposeCount)
			assert.Equal(t, "Oppose", s.Position)
		}
	}
	assert.NotContains(t, out, "s-5")
	assert.Equal(t, 1, repo.BillCalls["hr-1"], "one query per distinct bill")
}

func TestResolveEveryBillKeyPresent(t *testing.T) {
	repo := NewMockCampaignRepo()
	repo.BillErrs["s-686"] = errors.New("timeout")
	input := []model.Campaign{
		{ID: -1, GroupSlug: "acme", BillType: "hr", BillNumber: "1"},
		{ID: -2, GroupSlug: "acme", BillType: "S", BillNumber: "686"},
		{ID: -3, GroupSlug: "acme", CampaignType: model.TypeIssue, Title: "No bill"},
	}

	r := &service.CrossReferenceResolver{Repo: repo}
	out := r.Resolve(context.Background(), model.Owner{GroupSlug: "acme"}, input)

	assert.Len(t, out, 2)
	assert.NotNil(t, out["hr-1"])
	assert.Empty(t, out["hr-1"])
	assert.NotNil(t, out["s-686"])
	assert.Empty(t, out["s-686"])
}

func TestResolveMemberOwner(t *testing.T) {
	repo := NewMockCampaignRepo(
		&model.Campaign{ID: 1, BioguideID: "S000123", BillType: "s", BillNumber: "77"},
		&model.Campaign{ID: 2, GroupSlug: "S000123", BillType: "s", BillNumber: "77"},
	)
	member := model.Owner{BioguideID: "S000123"}
	input := []model.Campaign{{ID: 1, BioguideID: "S000123", BillType: "s", BillNumber: "77"}}

	out := (&service.CrossReferenceResolver{Repo: repo}).Resolve(context.Background(), member, input)

	// a group whose slug happens to equal the bioguide id is a different owner
	require.Len(t, out["s-77"], 1)
	assert.Equal(t, 2, out["s-77"][0].CampaignID)
}
