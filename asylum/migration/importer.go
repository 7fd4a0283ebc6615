// Package migration imports the flat JSON files left behind by the previous
// JavaScript deployment into Postgres.
package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/asylumlabs/asylumbot/asylum/database/models"
	"github.com/asylumlabs/asylumbot/asylum/database/repositories"
)

// legacyDateLayout matches JavaScript's Date.toDateString(), e.g.
// "Fri Mar 01 2024", which is how the old bot stored claim days.
const legacyDateLayout = "Mon Jan 02 2006"

type legacyDailyRecord struct {
	LastClaim    *string `json:"lastClaim"`
	Streak       int     `json:"streak"`
	Currency     int64   `json:"currency"`
	XP           int64   `json:"xp"`
	TriviaPasses int64   `json:"triviaPasses"`
}

type legacyBirthday struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type Importer struct {
	rewards       repositories.RewardRepository
	anniversaries repositories.AnniversaryRepository
}

func NewImporter(rewards repositories.RewardRepository, anniversaries repositories.AnniversaryRepository) *Importer {
	return &Importer{rewards: rewards, anniversaries: anniversaries}
}

// Run imports both legacy files. Existing rows are never overwritten, so the
// import can be re-run safely after a partial failure.
func (im *Importer) Run(ctx context.Context, dailyPath, birthdaysPath string) error {
	if err := im.ImportDailies(ctx, dailyPath); err != nil {
		return fmt.Errorf("failed to import daily records: %w", err)
	}
	if err := im.ImportBirthdays(ctx, birthdaysPath); err != nil {
		return fmt.Errorf("failed to import birthdays: %w", err)
	}
	return nil
}

func (im *Importer) ImportDailies(ctx context.Context, path string) error {
	var legacy map[string]legacyDailyRecord
	if err := readJSONFile(path, &legacy); err != nil {
		return err
	}

	imported, skipped := 0, 0
	for userID, old := range legacy {
		existing, err := im.rewards.Get(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			skipped++
			continue
		}

		record := &models.RewardRecord{
			UserID:       userID,
			Streak:       old.Streak,
			Currency:     old.Currency,
			XP:           old.XP,
			TriviaPasses: old.TriviaPasses,
		}
		if old.LastClaim != nil {
			lastClaim, err := time.ParseInLocation(legacyDateLayout, *old.LastClaim, time.Local)
			if err != nil {
				slog.Warn("Skipping daily record with unparseable claim date",
					slog.String("user_id", userID),
					slog.String("last_claim", *old.LastClaim),
					slog.Any("error", err))
				skipped++
				continue
			}
			record.LastClaimDate = &lastClaim
		} else if old.Streak != 0 {
			slog.Warn("Skipping daily record with a streak but no claim date",
				slog.String("user_id", userID),
				slog.Int("streak", old.Streak))
			skipped++
			continue
		}

		if err := im.rewards.Save(ctx, record); err != nil {
			return err
		}
		imported++
	}

	slog.Info("Imported legacy daily records",
		slog.String("path", path),
		slog.Int("imported", imported),
		slog.Int("skipped", skipped))
	return nil
}

func (im *Importer) ImportBirthdays(ctx context.Context, path string) error {
	var legacy map[string]legacyBirthday
	if err := readJSONFile(path, &legacy); err != nil {
		return err
	}

	imported, skipped := 0, 0
	for userID, old := range legacy {
		if old.Month < 1 || old.Month > 12 || old.Day < 1 || old.Day > 31 {
			slog.Warn("Skipping birthday with an impossible date",
				slog.String("user_id", userID),
				slog.Int("month", old.Month),
				slog.Int("day", old.Day))
			skipped++
			continue
		}

		inserted, err := im.anniversaries.SetIfAbsent(ctx, &models.Anniversary{
			UserID: userID,
			Month:  old.Month,
			Day:    old.Day,
			Year:   old.Year,
		})
		if err != nil {
			return err
		}
		if inserted {
			imported++
		} else {
			skipped++
		}
	}

	slog.Info("Imported legacy birthdays",
		slog.String("path", path),
		slog.Int("imported", imported),
		slog.Int("skipped", skipped))
	return nil
}

func readJSONFile(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
