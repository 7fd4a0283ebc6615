package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/asylumlabs/asylumbot/asylum/database/models"
	"github.com/uptrace/bun"
)

type RewardRepository interface {
	// Get returns nil, nil when the user has no record yet.
	Get(ctx context.Context, userID string) (*models.RewardRecord, error)
	Save(ctx context.Context, record *models.RewardRecord) error
	GetTopStreaks(ctx context.Context, limit int) ([]*models.RewardRecord, error)
}

type rewardRepository struct {
	db *bun.DB
}

func NewRewardRepository(db *bun.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) Get(ctx context.Context, userID string) (*models.RewardRecord, error) {
	record := new(models.RewardRecord)
	err := r.db.NewSelect().
		Model(record).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Error("Database error when getting reward record",
			slog.String("type", "db"),
			slog.String("operation", "Get"),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}

	return record, nil
}

func (r *rewardRepository) Save(ctx context.Context, record *models.RewardRecord) error {
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("last_claim_date = EXCLUDED.last_claim_date").
		Set("streak = EXCLUDED.streak").
		Set("currency = EXCLUDED.currency").
		Set("xp = EXCLUDED.xp").
		Set("trivia_passes = EXCLUDED.trivia_passes").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		slog.Error("Database error when saving reward record",
			slog.String("type", "db"),
			slog.String("operation", "Save"),
			slog.String("user_id", record.UserID),
			slog.String("error", err.Error()))
	}
	return err
}

func (r *rewardRepository) GetTopStreaks(ctx context.Context, limit int) ([]*models.RewardRecord, error) {
	var records []*models.RewardRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("streak > 0").
		OrderExpr("streak DESC, currency DESC").
		Limit(limit).
		Scan(ctx)
	return records, err
}
