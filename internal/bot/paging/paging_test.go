package paging

import "testing"

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, want int
	}{
		{0, 1},
		{1, 1},
		{5, 1},
		{6, 2},
		{37, 8},
		{50, 10},
		{51, 10}, // глубже MaxPages не листаем
		{1000, 10},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.count); got != tt.want {
			t.Errorf("TotalPages(%d) = %d, ожидали %d", tt.count, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		page, total, want int
	}{
		{0, 8, 1},
		{1, 8, 1},
		{5, 8, 5},
		{8, 8, 8},
		{99, 8, 8},
		{-3, 1, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.page, tt.total); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, ожидали %d", tt.page, tt.total, got, tt.want)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1); got != 0 {
		t.Errorf("Offset(1) = %d", got)
	}
	if got := Offset(3); got != 10 {
		t.Errorf("Offset(3) = %d", got)
	}
}
