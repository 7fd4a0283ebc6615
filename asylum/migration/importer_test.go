package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/asylumlabs/asylumbot/asylum/database/models"
)

type memoryRewards struct {
	records map[string]*models.RewardRecord
}

func (m *memoryRewards) Get(_ context.Context, userID string) (*models.RewardRecord, error) {
	return m.records[userID], nil
}

func (m *memoryRewards) Save(_ context.Context, record *models.RewardRecord) error {
	m.records[record.UserID] = record
	return nil
}

func (m *memoryRewards) GetTopStreaks(_ context.Context, limit int) ([]*models.RewardRecord, error) {
	return nil, nil
}

type memoryAnniversaries struct {
	items map[string]*models.Anniversary
}

func (m *memoryAnniversaries) Get(_ context.Context, userID string) (*models.Anniversary, error) {
	return m.items[userID], nil
}

func (m *memoryAnniversaries) SetIfAbsent(_ context.Context, anniversary *models.Anniversary) (bool, error) {
	if _, ok := m.items[anniversary.UserID]; ok {
		return false, nil
	}
	m.items[anniversary.UserID] = anniversary
	return true, nil
}

func (m *memoryAnniversaries) All(_ context.Context) ([]*models.Anniversary, error) {
	return nil, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImporter_Run(t *testing.T) {
	dir := t.TempDir()
	dailyPath := writeFile(t, dir, "daily.json", `{
		"100": {"lastClaim": "Fri Mar 01 2024", "streak": 3, "currency": 2375, "xp": 2375, "triviaPasses": 3},
		"200": {"lastClaim": null, "streak": 0, "currency": 0, "xp": 0, "triviaPasses": 0},
		"300": {"lastClaim": "not a date", "streak": 1, "currency": 500, "xp": 500, "triviaPasses": 1}
	}`)
	birthdaysPath := writeFile(t, dir, "birthdays.json", `{
		"100": {"year": 1999, "month": 3, "day": 1},
		"400": {"year": 0, "month": 13, "day": 40}
	}`)

	rewards := &memoryRewards{records: make(map[string]*models.RewardRecord)}
	anniversaries := &memoryAnniversaries{items: make(map[string]*models.Anniversary)}

	importer := NewImporter(rewards, anniversaries)
	if err := importer.Run(context.Background(), dailyPath, birthdaysPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	record := rewards.records["100"]
	if record == nil {
		t.Fatal("user 100 should have been imported")
	}
	if record.Streak != 3 || record.Currency != 2375 {
		t.Errorf("imported record = %+v, want streak 3 and 2375 currency", record)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	if record.LastClaimDate == nil || !record.LastClaimDate.Equal(want) {
		t.Errorf("LastClaimDate = %v, want %v", record.LastClaimDate, want)
	}

	if never := rewards.records["200"]; never == nil || never.LastClaimDate != nil {
		t.Errorf("user 200 should exist with no claim date, got %+v", never)
	}
	if _, ok := rewards.records["300"]; ok {
		t.Error("user 300 has an unparseable claim date and should be skipped")
	}

	if anniversaries.items["100"] == nil {
		t.Error("user 100's birthday should have been imported")
	}
	if _, ok := anniversaries.items["400"]; ok {
		t.Error("user 400's impossible date should be skipped")
	}
}

func TestImporter_DoesNotOverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	dailyPath := writeFile(t, dir, "daily.json",
		`{"100": {"lastClaim": "Fri Mar 01 2024", "streak": 1, "currency": 500, "xp": 500, "triviaPasses": 1}}`)
	birthdaysPath := writeFile(t, dir, "birthdays.json",
		`{"100": {"year": 1999, "month": 3, "day": 1}}`)

	existing := &models.RewardRecord{UserID: "100", Streak: 10, Currency: 99999}
	rewards := &memoryRewards{records: map[string]*models.RewardRecord{"100": existing}}
	anniversaries := &memoryAnniversaries{items: map[string]*models.Anniversary{
		"100": {UserID: "100", Month: 6, Day: 15},
	}}

	importer := NewImporter(rewards, anniversaries)
	if err := importer.Run(context.Background(), dailyPath, birthdaysPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if rewards.records["100"] != existing {
		t.Error("existing reward record was overwritten")
	}
	if anniversaries.items["100"].Month != 6 {
		t.Error("existing birthday was overwritten")
	}
}
