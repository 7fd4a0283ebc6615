package birthday

import (
	"context"
	"fmt"
	"time"

	"github.com/asylumlabs/asylumbot/asylum/database/models"
)

// MatchesToday reports whether the anniversary falls on now's calendar day.
// The registered year is ignored: birthdays recur.
func MatchesToday(anniversary *models.Anniversary, now time.Time) bool {
	if anniversary == nil {
		return false
	}
	return time.Month(anniversary.Month) == now.Month() && anniversary.Day == now.Day()
}

// ScanMatches walks every registered anniversary once and returns the user
// IDs whose birthday is today. Order is whatever the store returns.
func (j *Job) ScanMatches(ctx context.Context, now time.Time) ([]string, error) {
	anniversaries, err := j.anniversaries.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan anniversaries: %w", err)
	}

	var matched []string
	for _, anniversary := range anniversaries {
		if MatchesToday(anniversary, now) {
			matched = append(matched, anniversary.UserID)
		}
	}
	return matched, nil
}
