// internal/model/demographics.go
package model

import "time"

const (
	DataSourceReal      = "real"
	DataSourceSimulated = "simulated"
)

// Demographic category names, in display order.
const (
	CategoryAge          = "age"
	CategoryGender       = "gender"
	CategoryParty        = "party"
	CategoryEducation    = "education"
	CategoryIncome       = "income"
	CategoryEthnicity    = "ethnicity"
	CategoryGeography    = "geography"
	CategoryHousehold    = "household"
	CategoryVoterHistory = "voterHistory"
)

// CategoryOrder lists every category a snapshot carries.
var CategoryOrder = []string{
	CategoryAge, CategoryGender, CategoryParty, CategoryEducation, CategoryIncome,
	CategoryEthnicity, CategoryGeography, CategoryHousehold, CategoryVoterHistory,
}

// CategoryLabels is the fixed bucket set per category.
var CategoryLabels = map[string][]string{
	CategoryAge:          {"18-24", "25-34", "35-44", "45-54", "55-64", "65+"},
	CategoryGender:       {"Female", "Male", "Non-binary"},
	CategoryParty:        {"Democrat", "Republican", "Independent", "Other"},
	CategoryEducation:    {"High school or less", "Some college", "Bachelor's", "Graduate"},
	CategoryIncome:       {"Under $50k", "$50k-$100k", "$100k-$150k", "Over $150k"},
	CategoryEthnicity:    {"White", "Black", "Hispanic", "Asian", "Other"},
	CategoryGeography:    {"Northeast", "Midwest", "South", "West"},
	CategoryHousehold:    {"Single", "Married", "With children", "Other"},
	CategoryVoterHistory: {"Every election", "Most elections", "Some elections", "First-time"},
}

type Bucket struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// Tallies holds raw participant counts: category -> label -> count.
type Tallies struct {
	SampleSize int
	Counts     map[string]map[string]int
}

// DemographicSnapshot is the percentage view of a campaign's participants.
type DemographicSnapshot struct {
	CampaignID   int                 `json:"campaignId"`
	DataSource   string              `json:"dataSource"`
	SampleSize   int                 `json:"sampleSize"`
	SupportCount int                 `json:"supportCount"`
	OpposeCount  int                 `json:"opposeCount"`
	GeneratedAt  time.Time           `json:"generatedAt"`
	Categories   map[string][]Bucket `json:"categories"`
}
