package birthday

import (
	"errors"
	"time"

	"github.com/asylumlabs/asylumbot/asylum/database/models"
)

var ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

// NewAnniversary parses a user-supplied YYYY-MM-DD date into an anniversary
// record. Impossible calendar dates (2024-02-31) are rejected, not rolled
// over.
func NewAnniversary(userID string, date string) (*models.Anniversary, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &models.Anniversary{
		UserID: userID,
		Month:  int(parsed.Month()),
		Day:    parsed.Day(),
		Year:   parsed.Year(),
	}, nil
}
