package reward

import (
	"testing"
)

func defaultLevels() Levels {
	return Levels{0, 100, 300, 700, 1500}
}

func TestLevelsValidate(t *testing.T) {
	tests := []struct {
		name    string
		levels  Levels
		wantErr bool
	}{
		{"default table", defaultLevels(), false},
		{"nil", nil, true},
		{"four entries", Levels{0, 1, 2, 3}, true},
		{"six entries", Levels{0, 1, 2, 3, 4, 5}, true},
		{"duplicate threshold", Levels{0, 100, 100, 700, 1500}, true},
		{"descending", Levels{1500, 700, 300, 100, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.levels.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	levels := defaultLevels()

	tests := []struct {
		name   string
		points float64
		want   int
	}{
		{"zero points", 0, 1},
		{"below second threshold", 99, 1},
		{"at second threshold", 100, 2},
		{"mid table", 120, 2},
		{"at third threshold", 300, 3},
		{"between third and fourth", 699, 3},
		{"at fourth threshold", 700, 4},
		{"at top threshold", 1500, 5},
		{"above top threshold", 99999, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := levels.LevelFor(tt.points); got != tt.want {
				t.Errorf("LevelFor(%v) = %d, want %d", tt.points, got, tt.want)
			}
		})
	}
}

func TestLevelForBelowLowestThreshold(t *testing.T) {
	levels := Levels{50, 100, 300, 700, 1500}
	if got := levels.LevelFor(10); got != 1 {
		t.Errorf("LevelFor(10) = %d, want 1 for totals below the lowest threshold", got)
	}
}

func TestLevelForMonotonic(t *testing.T) {
	levels := defaultLevels()
	prev := 0
	for points := 0.0; points <= 2000; points += 10 {
		level := levels.LevelFor(points)
		if level < prev {
			t.Fatalf("level decreased from %d to %d at %v points", prev, level, points)
		}
		prev = level
	}
}
