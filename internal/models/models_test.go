package models

import "testing"

func TestClampPoliticalLeaning(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-2, -1},
		{0, 0},
		{2, 1},
		{0.5, 0.5},
	}
	for _, tt := range tests {
		if got := ClampPoliticalLeaning(tt.in); got != tt.want {
			t.Errorf("ClampPoliticalLeaning(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampSensationalism(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0.3, 0.3},
		{5, 1},
	}
	for _, tt := range tests {
		if got := ClampSensationalism(tt.in); got != tt.want {
			t.Errorf("ClampSensationalism(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampCoverageScore(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 0},
		{50, 50},
		{150, 100},
	}
	for _, tt := range tests {
		if got := ClampCoverageScore(tt.in); got != tt.want {
			t.Errorf("ClampCoverageScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStringArrayValueEmpty(t *testing.T) {
	var a StringArray
	v, err := a.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if v != "{}" {
		t.Errorf("Value() of empty StringArray = %v, want \"{}\"", v)
	}
}
