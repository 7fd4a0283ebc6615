package daily

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/asylumlabs/asylumbot/asylum/database/models"
)

type memoryRewardRepo struct {
	mu      sync.Mutex
	records map[string]*models.RewardRecord
	getErr  error
	saveErr error
	saves   int
}

func newMemoryRewardRepo() *memoryRewardRepo {
	return &memoryRewardRepo{records: make(map[string]*models.RewardRecord)}
}

func (m *memoryRewardRepo) Get(_ context.Context, userID string) (*models.RewardRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	record, ok := m.records[userID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (m *memoryRewardRepo) Save(_ context.Context, record *models.RewardRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	clone := *record
	m.records[record.UserID] = &clone
	m.saves++
	return nil
}

func (m *memoryRewardRepo) GetTopStreaks(_ context.Context, limit int) ([]*models.RewardRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var records []*models.RewardRecord
	for _, record := range m.records {
		clone := *record
		records = append(records, &clone)
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func day(year, month, dayOfMonth int) time.Time {
	return time.Date(year, time.Month(month), dayOfMonth, 9, 30, 0, 0, time.Local)
}

func TestEngine_AttemptClaim_Sequence(t *testing.T) {
	tests := []struct {
		name         string
		now          time.Time
		wantClaimed  bool
		wantStreak   int
		wantReset    bool
		wantCurrency int64
		wantXP       int64
		wantTrivia   int64
	}{
		{
			name:         "first ever claim",
			now:          day(2024, 3, 1),
			wantClaimed:  true,
			wantStreak:   1,
			wantCurrency: 500,
			wantXP:       500,
			wantTrivia:   1,
		},
		{
			name:         "next day continues streak",
			now:          day(2024, 3, 2),
			wantClaimed:  true,
			wantStreak:   2,
			wantCurrency: 750,
			wantXP:       750,
			wantTrivia:   1,
		},
		{
			name:        "same day again is blocked",
			now:         day(2024, 3, 2).Add(4 * time.Hour),
			wantClaimed: false,
			wantStreak:  2,
		},
		{
			name:         "gap resets streak",
			now:          day(2024, 3, 10),
			wantClaimed:  true,
			wantStreak:   1,
			wantReset:    true,
			wantCurrency: 500,
			wantXP:       500,
			wantTrivia:   1,
		},
	}

	repo := newMemoryRewardRepo()
	engine := NewEngine(DefaultConfig(), repo)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.AttemptClaim(context.Background(), "u1", tt.now)
			if err != nil {
				t.Fatalf("AttemptClaim() error = %v", err)
			}
			if got.Claimed != tt.wantClaimed {
				t.Errorf("Claimed = %v, want %v", got.Claimed, tt.wantClaimed)
			}
			if got.Streak != tt.wantStreak {
				t.Errorf("Streak = %d, want %d", got.Streak, tt.wantStreak)
			}
			if got.StreakReset != tt.wantReset {
				t.Errorf("StreakReset = %v, want %v", got.StreakReset, tt.wantReset)
			}
			if got.Currency != tt.wantCurrency {
				t.Errorf("Currency = %d, want %d", got.Currency, tt.wantCurrency)
			}
			if got.XP != tt.wantXP {
				t.Errorf("XP = %d, want %d", got.XP, tt.wantXP)
			}
			if got.TriviaPasses != tt.wantTrivia {
				t.Errorf("TriviaPasses = %d, want %d", got.TriviaPasses, tt.wantTrivia)
			}

			wantEligible := time.Date(tt.now.Year(), tt.now.Month(), tt.now.Day()+1, 0, 0, 0, 0, time.Local)
			if !got.NextEligible.Equal(wantEligible) {
				t.Errorf("NextEligible = %v, want %v", got.NextEligible, wantEligible)
			}
		})
	}
}

func TestEngine_AttemptClaim_SameDayDoesNotMutate(t *testing.T) {
	repo := newMemoryRewardRepo()
	engine := NewEngine(DefaultConfig(), repo)

	first, err := engine.AttemptClaim(context.Background(), "u1", day(2024, 3, 1))
	if err != nil {
		t.Fatalf("AttemptClaim() error = %v", err)
	}
	if !first.Claimed {
		t.Fatal("first claim should succeed")
	}

	before := *repo.records["u1"]
	savesBefore := repo.saves

	second, err := engine.AttemptClaim(context.Background(), "u1", day(2024, 3, 1).Add(8*time.Hour))
	if err != nil {
		t.Fatalf("AttemptClaim() error = %v", err)
	}
	if second.Claimed {
		t.Error("second same-day claim should be blocked")
	}
	if second.Streak != first.Streak {
		t.Errorf("Streak changed between calls: %d != %d", second.Streak, first.Streak)
	}
	if repo.saves != savesBefore {
		t.Errorf("blocked claim wrote to the store (%d saves, want %d)", repo.saves, savesBefore)
	}
	after := *repo.records["u1"]
	if after.Currency != before.Currency || after.XP != before.XP || after.TriviaPasses != before.TriviaPasses {
		t.Error("totals changed after a blocked claim")
	}
}

func TestEngine_AttemptClaim_RewardFormula(t *testing.T) {
	repo := newMemoryRewardRepo()
	engine := NewEngine(DefaultConfig(), repo)

	wantCurrency := []int64{500, 750, 1125, 1687, 2531}

	var prevTotal int64
	for i := 0; i < len(wantCurrency); i++ {
		now := day(2024, 5, 1+i)
		got, err := engine.AttemptClaim(context.Background(), "u1", now)
		if err != nil {
			t.Fatalf("day %d: AttemptClaim() error = %v", i+1, err)
		}
		if got.Currency != wantCurrency[i] {
			t.Errorf("day %d: Currency = %d, want %d", i+1, got.Currency, wantCurrency[i])
		}

		total := repo.records["u1"].Currency
		if total < prevTotal {
			t.Errorf("day %d: total decreased from %d to %d", i+1, prevTotal, total)
		}
		prevTotal = total
	}
}

func TestEngine_AttemptClaim_PersistenceErrors(t *testing.T) {
	dbErr := errors.New("connection refused")

	t.Run("read failure never fabricates a claim", func(t *testing.T) {
		repo := newMemoryRewardRepo()
		repo.getErr = dbErr
		engine := NewEngine(DefaultConfig(), repo)

		got, err := engine.AttemptClaim(context.Background(), "u1", day(2024, 3, 1))
		if !errors.Is(err, dbErr) {
			t.Fatalf("AttemptClaim() error = %v, want wrapped %v", err, dbErr)
		}
		if got != nil {
			t.Errorf("AttemptClaim() = %+v, want nil result on read failure", got)
		}
	})

	t.Run("write failure propagates", func(t *testing.T) {
		repo := newMemoryRewardRepo()
		repo.saveErr = dbErr
		engine := NewEngine(DefaultConfig(), repo)

		if _, err := engine.AttemptClaim(context.Background(), "u1", day(2024, 3, 1)); !errors.Is(err, dbErr) {
			t.Fatalf("AttemptClaim() error = %v, want wrapped %v", err, dbErr)
		}
	})
}

func TestEngine_AttemptClaim_ConcurrentSameUser(t *testing.T) {
	repo := newMemoryRewardRepo()
	engine := NewEngine(DefaultConfig(), repo)
	now := day(2024, 3, 1)

	const attempts = 16
	results := make(chan bool, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := engine.AttemptClaim(context.Background(), "u1", now)
			if err != nil {
				t.Errorf("AttemptClaim() error = %v", err)
				return
			}
			results <- got.Claimed
		}()
	}
	wg.Wait()
	close(results)

	claimed := 0
	for ok := range results {
		if ok {
			claimed++
		}
	}
	if claimed != 1 {
		t.Errorf("%d concurrent attempts claimed, want exactly 1", claimed)
	}
	if got := repo.records["u1"].Currency; got != 500 {
		t.Errorf("total currency = %d, want 500 after a single winning claim", got)
	}
}
