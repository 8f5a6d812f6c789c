package gamification

import "testing"

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{999, 2},
		{1000, 3},
		{1250, 3},
		{12499, 25},
	}

	for _, tt := range tests {
		if got := CalculateLevel(tt.xp); got != tt.want {
			t.Errorf("CalculateLevel(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestXPForNextLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 500},
		{1, 499},
		{499, 1},
		{500, 500},
		{750, 250},
	}

	for _, tt := range tests {
		if got := XPForNextLevel(tt.xp); got != tt.want {
			t.Errorf("XPForNextLevel(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestXPProgress(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 0},
		{250, 50},
		{500, 0},
		{997, 99},
		{998, 100},
		{999, 100},
		{1002, 0},
		{1003, 1},
	}

	for _, tt := range tests {
		if got := XPProgress(tt.xp); got != tt.want {
			t.Errorf("XPProgress(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestXPProgressBounds(t *testing.T) {
	for xp := 0; xp < 3*XPPerLevel; xp++ {
		if p := XPProgress(xp); p < 0 || p > 100 {
			t.Fatalf("XPProgress(%d) = %d, out of [0,100]", xp, p)
		}
		if n := XPForNextLevel(xp); n < 1 || n > XPPerLevel {
			t.Fatalf("XPForNextLevel(%d) = %d, out of [1,500]", xp, n)
		}
	}
}

func TestScorePercent(t *testing.T) {
	tests := []struct {
		score, total int
		want         int
	}{
		{95, 100, 95},
		{9, 10, 90},
		{2, 3, 67},
		{1, 3, 33},
		{0, 5, 0},
		{5, 5, 100},
		{1, 0, 0},
	}

	for _, tt := range tests {
		if got := ScorePercent(tt.score, tt.total); got != tt.want {
			t.Errorf("ScorePercent(%d, %d) = %d, want %d", tt.score, tt.total, got, tt.want)
		}
	}
}
