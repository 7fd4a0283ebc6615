package daily

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/asylumlabs/asylumbot/asylum/database/models"
	"github.com/asylumlabs/asylumbot/asylum/database/repositories"
)

// Config holds the reward tuning for the daily claim engine.
type Config struct {
	BaseReward       int64   // currency and XP granted at streak 1
	StreakMultiplier float64 // compounding factor per consecutive day
	TriviaPasses     int64   // flat passes granted per claim
}

func DefaultConfig() Config {
	return Config{
		BaseReward:       500,
		StreakMultiplier: 1.5,
		TriviaPasses:     1,
	}
}

// ClaimResult describes the outcome of a single claim attempt. It is never
// persisted; callers format it into a reply or notification.
type ClaimResult struct {
	Claimed     bool
	Streak      int
	StreakReset bool

	// Rewards granted by this claim. Zero when Claimed is false.
	Currency     int64
	XP           int64
	TriviaPasses int64

	// NextEligible is the start of the next local calendar day.
	NextEligible time.Time
}

// Engine owns every mutation of reward records. It holds no state between
// calls beyond its per-user locks: each attempt is a full read-modify-write
// against the repository.
type Engine struct {
	cfg    Config
	repo   repositories.RewardRepository
	userMu sync.Map // userID -> *sync.Mutex
}

func NewEngine(cfg Config, repo repositories.RewardRepository) *Engine {
	def := DefaultConfig()
	if cfg.BaseReward <= 0 {
		cfg.BaseReward = def.BaseReward
	}
	if cfg.StreakMultiplier <= 0 {
		cfg.StreakMultiplier = def.StreakMultiplier
	}
	if cfg.TriviaPasses <= 0 {
		cfg.TriviaPasses = def.TriviaPasses
	}
	return &Engine{cfg: cfg, repo: repo}
}

// AttemptClaim claims the daily reward for userID as of now. Claims for the
// same user are serialized so two near-simultaneous attempts cannot both win
// the same day; different users proceed independently.
func (e *Engine) AttemptClaim(ctx context.Context, userID string, now time.Time) (*ClaimResult, error) {
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	record, err := e.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reward record: %w", err)
	}
	if record == nil {
		record = &models.RewardRecord{UserID: userID}
	}

	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	if record.ClaimedOn(now) {
		return &ClaimResult{
			Claimed:      false,
			Streak:       record.Streak,
			NextEligible: tomorrow,
		}, nil
	}

	yesterday := today.AddDate(0, 0, -1)

	var streakReset bool
	if record.ClaimedOn(yesterday) {
		record.Streak++
	} else {
		streakReset = record.Streak > 0
		record.Streak = 1
	}

	multiplier := math.Pow(e.cfg.StreakMultiplier, float64(record.Streak-1))
	currencyReward := int64(math.Floor(float64(e.cfg.BaseReward) * multiplier))
	xpReward := int64(math.Floor(float64(e.cfg.BaseReward) * multiplier))

	record.Currency += currencyReward
	record.XP += xpReward
	record.TriviaPasses += e.cfg.TriviaPasses
	record.LastClaimDate = &today

	if err := e.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save reward record: %w", err)
	}

	slog.Info("Daily reward claimed",
		slog.String("user_id", userID),
		slog.Int("streak", record.Streak),
		slog.Int64("currency", currencyReward),
		slog.Int64("xp", xpReward),
	)

	return &ClaimResult{
		Claimed:      true,
		Streak:       record.Streak,
		StreakReset:  streakReset,
		Currency:     currencyReward,
		XP:           xpReward,
		TriviaPasses: e.cfg.TriviaPasses,
		NextEligible: tomorrow,
	}, nil
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	mu, _ := e.userMu.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// startOfDay truncates t to midnight in its own location. Calendar
// arithmetic, not 24h offsets, so DST days behave.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
