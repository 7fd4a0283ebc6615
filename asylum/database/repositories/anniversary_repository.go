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

type AnniversaryRepository interface {
	// Get returns nil, nil when the user has not registered a birthday.
	Get(ctx context.Context, userID string) (*models.Anniversary, error)
	// SetIfAbsent inserts the anniversary unless the user already has one.
	// It returns false when an existing row blocked the write.
	SetIfAbsent(ctx context.Context, anniversary *models.Anniversary) (bool, error)
	All(ctx context.Context) ([]*models.Anniversary, error)
}

type anniversaryRepository struct {
	db *bun.DB
}

func NewAnniversaryRepository(db *bun.DB) AnniversaryRepository {
	return &anniversaryRepository{db: db}
}

func (r *anniversaryRepository) Get(ctx context.Context, userID string) (*models.Anniversary, error) {
	anniversary := new(models.Anniversary)
	err := r.db.NewSelect().
		Model(anniversary).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Error("Database error when getting anniversary",
			slog.String("type", "db"),
			slog.String("operation", "Get"),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, err
	}

	return anniversary, nil
}

func (r *anniversaryRepository) SetIfAbsent(ctx context.Context, anniversary *models.Anniversary) (bool, error) {
	anniversary.CreatedAt = time.Now()

	// First-write-wins at the SQL level: a concurrent insert for the same
	// user loses the race cleanly instead of erroring.
	res, err := r.db.NewInsert().
		Model(anniversary).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		slog.Error("Database error when setting anniversary",
			slog.String("type", "db"),
			slog.String("operation", "SetIfAbsent"),
			slog.String("user_id", anniversary.UserID),
			slog.String("error", err.Error()))
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *anniversaryRepository) All(ctx context.Context) ([]*models.Anniversary, error) {
	var anniversaries []*models.Anniversary
	err := r.db.NewSelect().
		Model(&anniversaries).
		Scan(ctx)
	return anniversaries, err
}
