// internal/model/action.go
package model

import "time"

const (
	PositionSupport = "support"
	PositionOppose  = "oppose"
)

// ParticipantAction is one person taking a side on a campaign. The profile
// fields are self-reported and optional.
type ParticipantAction struct {
	ID           int       `db:"id" json:"id"`
	CampaignID   int       `db:"campaign_id" json:"campaignId"`
	Position     string    `db:"position" json:"position"` // support, oppose
	AgeGroup     string    `db:"age_group" json:"ageGroup,omitempty"`
	Gender       string    `db:"gender" json:"gender,omitempty"`
	Party        string    `db:"party" json:"party,omitempty"`
	Education    string    `db:"education" json:"education,omitempty"`
	Income       string    `db:"income" json:"income,omitempty"`
	Ethnicity    string    `db:"ethnicity" json:"ethnicity,omitempty"`
	ZipCode      string    `db:"zip_code" json:"zipCode,omitempty"`
	Household    string    `db:"household" json:"household,omitempty"`
	VoterHistory string    `db:"voter_history" json:"voterHistory,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
