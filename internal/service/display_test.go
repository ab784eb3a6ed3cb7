package service

import (
	"testing"
	"time"

	"github.com/lshi/nbadaily/internal/store"
)

func TestAgeFrom(t *testing.T) {
	now := time.Date(2019, 4, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		birthDate string
		want      int
	}{
		{"december birthday not yet reached", "1984-12-30T00:00:00", 34},
		{"march birthday already passed", "1998-03-03T00:00:00", 21},
		{"september birthday not yet reached", "1993-09-29T00:00:00", 25},
		{"bare date format", "1988-03-14", 31},
		{"unparseable", "unknown", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ageFrom(tt.birthDate, now); got != tt.want {
				t.Errorf("ageFrom(%q) = %d, want %d", tt.birthDate, got, tt.want)
			}
		})
	}
}

func TestRecordWins(t *testing.T) {
	tests := []struct {
		record string
		want   int
	}{
		{"26-15", 26},
		{"0-41", 0},
		{"", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := recordWins(tt.record); got != tt.want {
			t.Errorf("recordWins(%q) = %d, want %d", tt.record, got, tt.want)
		}
	}
}

func TestDisplayStatsConvertsPercentages(t *testing.T) {
	line := displayStats(store.CountingStats{
		Points:    25,
		FGMade:    9,
		FGPercent: 0.529,
		FTPercent: 1,
	})
	if line.Points != 25 || line.FGMade != 9 {
		t.Errorf("counting stats must pass through: %+v", line)
	}
	if line.FGPercent != 52.9 {
		t.Errorf("FGPercent = %v, want 52.9", line.FGPercent)
	}
	if line.FTPercent != 100 {
		t.Errorf("FTPercent = %v, want 100", line.FTPercent)
	}
}

func TestSeedConference(t *testing.T) {
	seeds := []Seed{
		{TeamID: 1, Wins: 49, WinPercent: 59.8, HomeRecord: "29-12", RoadRecord: "20-21"},
		{TeamID: 2, Wins: 60, WinPercent: 73.2, HomeRecord: "33-8", RoadRecord: "27-14"},
		// Same record as team 1, better home record.
		{TeamID: 3, Wins: 49, WinPercent: 59.8, HomeRecord: "30-11", RoadRecord: "19-22"},
	}

	seedConference(seeds)

	wantOrder := []int{2, 3, 1}
	for i, teamID := range wantOrder {
		if seeds[i].TeamID != teamID {
			t.Errorf("seed %d = team %d, want %d", i+1, seeds[i].TeamID, teamID)
		}
		if seeds[i].Seed != i+1 {
			t.Errorf("seed number = %d, want %d", seeds[i].Seed, i+1)
		}
	}
}

func TestSeedConferenceRoadTiebreak(t *testing.T) {
	seeds := []Seed{
		{TeamID: 1, Wins: 42, WinPercent: 51.2, HomeRecord: "25-16", RoadRecord: "17-24"},
		{TeamID: 2, Wins: 42, WinPercent: 51.2, HomeRecord: "25-16", RoadRecord: "18-23"},
	}

	seedConference(seeds)

	if seeds[0].TeamID != 2 {
		t.Errorf("first seed = team %d, want 2 (better road record)", seeds[0].TeamID)
	}
}

func TestOvertimes(t *testing.T) {
	tests := []struct {
		name  string
		ptsOT [10]int
		want  int
	}{
		{"regulation", [10]int{}, 0},
		{"one overtime", [10]int{5}, 1},
		{"scoreless first overtime still counts by later period", [10]int{0, 7}, 2},
		{"deep overtime", [10]int{4, 4, 4, 4, 2}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overtimes(tt.ptsOT); got != tt.want {
				t.Errorf("overtimes(%v) = %d, want %d", tt.ptsOT, got, tt.want)
			}
		})
	}
}
