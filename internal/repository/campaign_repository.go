package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/unclebandit/advocacy-backend/internal/errors"
	"github.com/unclebandit/advocacy-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id int) (*model.Campaign, error)
	Update(ctx context.Context, c *model.Campaign) error
	Delete(ctx context.Context, id int) error

	// Lookups
	ListByOwner(ctx context.Context, owner model.Owner) ([]*model.Campaign, error)
	ListByBill(ctx context.Context, billType, billNumber string) ([]*model.Campaign, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Campaign, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, group_slug, bioguide_id, user_id, campaign_type, title, description, position,
        bill_type, bill_number, bill_title, congress, bill_status, support_count, oppose_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	c := &model.Campaign{}
	err := row.Scan(
		&c.ID, &c.GroupSlug, &c.BioguideID, &c.UserID, &c.CampaignType, &c.Title, &c.Description, &c.Position,
		&c.BillType, &c.BillNumber, &c.BillTitle, &c.Congress, &c.BillStatus, &c.SupportCount, &c.OpposeCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.CampaignType == "" {
		c.CampaignType = model.TypeLegislation
	}
	c.BillType = strings.ToLower(c.BillType)
	query := `
        INSERT INTO campaigns (group_slug, bioguide_id, user_id, campaign_type, title, description, position,
            bill_type, bill_number, bill_title, congress, bill_status, support_count, oppose_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING id
    `
	err := r.DB.QueryRowContext(ctx, query,
		c.GroupSlug, c.BioguideID, c.UserID, c.CampaignType, c.Title, c.Description, c.Position,
		c.BillType, c.BillNumber, c.BillTitle, c.Congress, c.BillStatus, c.SupportCount, c.OpposeCount, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// Update rewrites the editable fields. Owner, bill key and counters are fixed after creation.
func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	query := `
        UPDATE campaigns
        SET title=$1, description=$2, position=$3, bill_title=$4, bill_status=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at
    `
	var updated time.Time
	err := r.DB.QueryRowContext(ctx, query, c.Title, c.Description, c.Position, c.BillTitle, c.BillStatus, c.ID).Scan(&updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NewCampaignNotFound(c.ID)
		}
		return fmt.Errorf("failed to update campaign %d: %w", c.ID, err)
	}
	c.UpdatedAt = &updated
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete campaign %d: %w", id, err)
	}
	if n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, fmt.Errorf("failed to get campaign %d: %w", id, err)
	}
	return c, nil
}

// ====================== Lookups ======================

func (r *CampaignRepository) ListByOwner(ctx context.Context, owner model.Owner) ([]*model.Campaign, error) {
	if !owner.Valid() {
		return nil, appErrors.ErrInvalidOwner
	}
	column := "group_slug"
	if owner.IsMember() {
		column = "bioguide_id"
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE ` + column + `=$1`
	return r.list(ctx, query, owner.Key())
}

func (r *CampaignRepository) ListByBill(ctx context.Context, billType, billNumber string) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE bill_type=$1 AND bill_number=$2 ORDER BY created_at DESC`
	return r.list(ctx, query, strings.ToLower(billType), billNumber)
}

func (r *CampaignRepository) ListByUser(ctx context.Context, userID string) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *CampaignRepository) list(ctx context.Context, query string, args ...any) ([]*model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ====================== Counters ======================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// incrementCounter runs inside RecordAction's transaction.
func incrementCounter(ctx context.Context, db execer, id int, position string) error {
	var column string
	switch position {
	case model.PositionSupport:
		column = "support_count"
	case model.PositionOppose:
		column = "oppose_count"
	default:
		return appErrors.NewValidation("position", fmt.Sprintf("unknown position %q", position))
	}
	query := `UPDATE campaigns SET ` + column + `=` + column + `+1 WHERE id=$1`
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s for campaign %d: %w", column, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
