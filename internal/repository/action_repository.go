package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/advocacy-backend/internal/errors"
	"github.com/unclebandit/advocacy-backend/internal/model"
)

// ActionRepositoryInterface defines methods used by the action pipeline and the aggregator
type ActionRepositoryInterface interface {
	RecordAction(ctx context.Context, a *model.ParticipantAction) error
	Tallies(ctx context.Context, campaignID int) (*model.Tallies, error)
}

type ActionRepository struct {
	DB *sql.DB
}

const pqForeignKeyViolation = "23503"

// RecordAction stores the action and bumps the campaign counter in one transaction.
func (r *ActionRepository) RecordAction(ctx context.Context, a *model.ParticipantAction) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin action tx: %w", err)
	}
	defer tx.Rollback()

	a.CreatedAt = time.Now()
	query := `
        INSERT INTO participant_actions
        (campaign_id, position, age_group, gender, party, education, income, ethnicity, zip_code, household, voter_history, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `
	err = tx.QueryRowContext(ctx, query,
		a.CampaignID, a.Position, a.AgeGroup, a.Gender, a.Party, a.Education, a.Income,
		a.Ethnicity, a.ZipCode, a.Household, a.VoterHistory, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return insertActionError(a.CampaignID, err)
	}

	if err := incrementCounter(ctx, tx, a.CampaignID, a.Position); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit action tx: %w", err)
	}
	return nil
}

// insertActionError maps a foreign-key violation (campaign deleted meanwhile) to not-found.
func insertActionError(campaignID int, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	return fmt.Errorf("failed to insert action for campaign %d: %w", campaignID, err)
}

// Tallies counts answered profile fields per category. Geography is keyed by
// raw zip code; callers fold zips into regions.
func (r *ActionRepository) Tallies(ctx context.Context, campaignID int) (*model.Tallies, error) {
	t := &model.Tallies{Counts: map[string]map[string]int{}}

	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participant_actions WHERE campaign_id=$1`, campaignID,
	).Scan(&t.SampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to count actions for campaign %d: %w", campaignID, err)
	}
	if t.SampleSize == 0 {
		return t, nil
	}

	query := `
        SELECT 'age', age_group, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND age_group<>'' GROUP BY age_group
        UNION ALL SELECT 'gender', gender, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND gender<>'' GROUP BY gender
        UNION ALL SELECT 'party', party, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND party<>'' GROUP BY party
        UNION ALL SELECT 'education', education, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND education<>'' GROUP BY education
        UNION ALL SELECT 'income', income, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND income<>'' GROUP BY income
        UNION ALL SELECT 'ethnicity', ethnicity, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND ethnicity<>'' GROUP BY ethnicity
        UNION ALL SELECT 'geography', zip_code, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND zip_code<>'' GROUP BY zip_code
        UNION ALL SELECT 'household', household, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND household<>'' GROUP BY household
        UNION ALL SELECT 'voterHistory', voter_history, COUNT(*) FROM participant_actions WHERE campaign_id=$1 AND voter_history<>'' GROUP BY voter_history
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally actions for campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, label string
		var count int
		if err := rows.Scan(&category, &label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		if t.Counts[category] == nil {
			t.Counts[category] = map[string]int{}
		}
		t.Counts[category][label] += count
	}
	return t, rows.Err()
}

var _ ActionRepositoryInterface = (*ActionRepository)(nil)
