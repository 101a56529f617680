// internal/model/campaign.go
package model

import (
	"fmt"
	"strings"
	"time"
)

// Campaign types
const (
	TypeLegislation       = "Legislation"
	TypeIssue             = "Issue"
	TypeCandidateAdvocacy = "Candidate Advocacy"
	TypeVoterPoll         = "Voter Poll"
)

type Campaign struct {
	ID           int        `db:"id" json:"id"`
	GroupSlug    string     `db:"group_slug" json:"groupSlug,omitempty"`
	BioguideID   string     `db:"bioguide_id" json:"bioguideId,omitempty"`
	UserID       string     `db:"user_id" json:"userId,omitempty"`
	CampaignType string     `db:"campaign_type" json:"campaignType"`
	Title        string     `db:"title" json:"title,omitempty"`
	Description  string     `db:"description" json:"description,omitempty"`
	Position     string     `db:"position" json:"position"`
	BillType     string     `db:"bill_type" json:"billType,omitempty"`
	BillNumber   string     `db:"bill_number" json:"billNumber,omitempty"`
	BillTitle    string     `db:"bill_title" json:"billTitle,omitempty"`
	Congress     int        `db:"congress" json:"congress,omitempty"`
	BillStatus   int        `db:"bill_status" json:"billStatus,omitempty"`
	SupportCount int        `db:"support_count" json:"supportCount"`
	OpposeCount  int        `db:"oppose_count" json:"opposeCount"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updatedAt,omitempty"`

	// Seed marks an entry that came from the static fallback set, not the store.
	Seed bool `db:"-" json:"seed,omitempty"`
}

// Owner returns the campaign's owner key.
func (c *Campaign) Owner() Owner {
	return Owner{GroupSlug: c.GroupSlug, BioguideID: c.BioguideID}
}

// SetOwner overwrites both owner columns.
func (c *Campaign) SetOwner(o Owner) {
	c.GroupSlug = o.GroupSlug
	c.BioguideID = o.BioguideID
}

// HasBill is true when the campaign targets a specific bill.
func (c *Campaign) HasBill() bool {
	return c.BillType != "" && c.BillNumber != ""
}

// BillKey is the cross-owner join key, "type-number".
func (c *Campaign) BillKey() string {
	return BillKey(c.BillType, c.BillNumber)
}

func BillKey(billType, billNumber string) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(billType), billNumber)
}

// IsKnownType reports whether t is one of the campaign type tags.
func IsKnownType(t string) bool {
	switch t {
	case TypeLegislation, TypeIssue, TypeCandidateAdvocacy, TypeVoterPoll:
		return true
	}
	return false
}

// Owner is either an advocacy group (by slug) or a legislator's office (by bioguide id).
type Owner struct {
	GroupSlug  string `json:"groupSlug,omitempty"`
	BioguideID string `json:"bioguideId,omitempty"`
}

// Valid is true when exactly one side is set.
func (o Owner) Valid() bool {
	return (o.GroupSlug == "") != (o.BioguideID == "")
}

func (o Owner) IsMember() bool {
	return o.BioguideID != ""
}

// Key is the non-empty half of the owner.
func (o Owner) Key() string {
	if o.IsMember() {
		return o.BioguideID
	}
	return o.GroupSlug
}

func (o Owner) String() string {
	if o.IsMember() {
		return "member:" + o.BioguideID
	}
	return "group:" + o.GroupSlug
}

// Sibling is another owner's campaign on the same bill.
type Sibling struct {
	CampaignID   int    `json:"campaignId"`
	GroupSlug    string `json:"groupSlug,omitempty"`
	BioguideID   string `json:"bioguideId,omitempty"`
	CampaignType string `json:"campaignType"`
	Position     string `json:"position"`
	SupportCount int    `json:"supportCount"`
	OpposeCount  int    `json:"opposeCount"`
	BillTitle    string `json:"billTitle,omitempty"`
}
