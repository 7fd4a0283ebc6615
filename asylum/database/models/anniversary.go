package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Anniversary is a user's registered birthday. Records are first-write-wins:
// once a row exists for a user it is never mutated or deleted.
type Anniversary struct {
	bun.BaseModel `bun:"table:anniversaries,alias:an"`

	ID     int64  `bun:"id,pk,autoincrement"`
	UserID string `bun:"user_id,notnull,unique"`
	Month  int    `bun:"month,notnull"`
	Day    int    `bun:"day,notnull"`

	// Year is informational only; matching ignores it. Zero means the user
	// did not provide one.
	Year int `bun:"year"`

	CreatedAt time.Time `bun:"created_at,notnull"`
}
