package birthday

import (
	"errors"
	"testing"
)

func TestNewAnniversary(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		wantMonth int
		wantDay   int
		wantYear  int
		wantErr   bool
	}{
		{"valid date", "1999-03-01", 3, 1, 1999, false},
		{"leap day", "2000-02-29", 2, 29, 2000, false},
		{"impossible day", "2024-02-31", 0, 0, 0, true},
		{"wrong format", "03/01/1999", 0, 0, 0, true},
		{"missing day", "1999-03", 0, 0, 0, true},
		{"empty", "", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAnniversary("u1", tt.date)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("NewAnniversary(%q) error = %v, want ErrInvalidDate", tt.date, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAnniversary(%q) error = %v", tt.date, err)
			}
			if got.Month != tt.wantMonth || got.Day != tt.wantDay || got.Year != tt.wantYear {
				t.Errorf("NewAnniversary(%q) = %d-%d-%d, want %d-%d-%d",
					tt.date, got.Year, got.Month, got.Day, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
		})
	}
}
