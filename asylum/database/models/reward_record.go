package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RewardRecord tracks a user's daily claim history and accumulated rewards.
// A record is created lazily on the first claim attempt and never deleted.
type RewardRecord struct {
	bun.BaseModel `bun:"table:reward_records,alias:rr"`

	ID     int64  `bun:"id,pk,autoincrement"`
	UserID string `bun:"user_id,notnull,unique"`

	// LastClaimDate is nil until the first successful claim. Only the
	// calendar day matters; the time of day is always midnight local.
	LastClaimDate *time.Time `bun:"last_claim_date"`
	Streak        int        `bun:"streak,notnull,default:0"`

	// Running totals. Claims only ever add to these.
	Currency     int64 `bun:"currency,notnull,default:0"`
	XP           int64 `bun:"xp,notnull,default:0"`
	TriviaPasses int64 `bun:"trivia_passes,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// ClaimedOn reports whether the record's last claim happened on the same
// calendar day as t, in t's location.
func (r *RewardRecord) ClaimedOn(t time.Time) bool {
	if r == nil || r.LastClaimDate == nil {
		return false
	}
	y1, m1, d1 := r.LastClaimDate.In(t.Location()).Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
