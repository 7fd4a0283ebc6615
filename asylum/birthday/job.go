package birthday

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asylumlabs/asylumbot/asylum/database/repositories"
	"github.com/asylumlabs/asylumbot/asylum/economy/daily"
	"github.com/asylumlabs/asylumbot/asylum/logger"
	"golang.org/x/sync/errgroup"
)

const (
	perUserTimeout = 15 * time.Second
	maxConcurrent  = 4
)

// Notifier delivers a congratulation to a user, via the announcement channel
// or a DM fallback. Implementations own all platform formatting.
type Notifier interface {
	Notify(ctx context.Context, userID string, message string) error
}

// Job congratulates every user whose birthday is today and auto-claims their
// daily reward on the way. One user's failure never stops the others.
type Job struct {
	anniversaries repositories.AnniversaryRepository
	rewards       repositories.RewardRepository
	engine        *daily.Engine
	notifier      Notifier
}

func NewJob(
	anniversaries repositories.AnniversaryRepository,
	rewards repositories.RewardRepository,
	engine *daily.Engine,
	notifier Notifier,
) *Job {
	return &Job{
		anniversaries: anniversaries,
		rewards:       rewards,
		engine:        engine,
		notifier:      notifier,
	}
}

// Run executes one birthday sweep for the calendar day of now. It never
// returns an error: per-user problems are logged and skipped, and a failed
// scan just means an empty run.
func (j *Job) Run(ctx context.Context, now time.Time) {
	start := time.Now()

	matched, err := j.ScanMatches(ctx, now)
	if err != nil {
		slog.Error("Birthday scan failed",
			slog.String("type", "job"),
			slog.Any("error", err))
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrent)
	for _, userID := range matched {
		userID := userID
		group.Go(func() error {
			j.processUser(groupCtx, userID, now)
			return nil
		})
	}
	_ = group.Wait()

	logger.LogJob("birthday", time.Since(start), slog.Int("matched", len(matched)))
}

func (j *Job) processUser(ctx context.Context, userID string, now time.Time) {
	ctx, cancel := context.WithTimeout(ctx, perUserTimeout)
	defer cancel()

	// Snapshot before the claim so a manual claim earlier today is not
	// reported as a birthday auto-grant. Taking it after would always see
	// today's date and turn the guard into a no-op.
	record, err := j.rewards.Get(ctx, userID)
	if err != nil {
		slog.Warn("Failed to read reward record before auto-claim",
			slog.String("type", "job"),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
	alreadyClaimed := record.ClaimedOn(now)

	autoClaimed := false
	result, err := j.engine.AttemptClaim(ctx, userID, now)
	if err != nil {
		slog.Warn("Failed to auto-claim daily reward",
			slog.String("type", "job"),
			slog.String("user_id", userID),
			slog.Any("error", err))
	} else {
		autoClaimed = result.Claimed && !alreadyClaimed
	}

	if err := j.notifier.Notify(ctx, userID, congratulation(userID, autoClaimed)); err != nil {
		slog.Warn("Failed to deliver birthday message",
			slog.String("type", "job"),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}

func congratulation(userID string, autoClaimed bool) string {
	message := fmt.Sprintf("Happy Birthday, <@%s>! 🎉\n", userID)
	if autoClaimed {
		message += "🎁 Your daily rewards have been claimed for you as a birthday treat!\n"
	}
	message += "Till next year~"
	return message
}
