// Package service composes repository reads into response shapes. All
// display conversions happen here, at the read boundary: percentages go
// from stored fractions to the 0-100 scale exactly once.
package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/lshi/nbadaily/internal/normalize"
	"github.com/lshi/nbadaily/internal/store"
)

// StatLine is a counting-stat block in display form: upstream display
// column names, percentages on the 0-100 scale.
type StatLine struct {
	Minutes    int     `json:"MIN"`
	Points     int     `json:"PTS"`
	OffenseReb int     `json:"OREB"`
	DefenseReb int     `json:"DREB"`
	Rebounds   int     `json:"REB"`
	Assists    int     `json:"AST"`
	Steals     int     `json:"STL"`
	Blocks     int     `json:"BLK"`
	Turnovers  int     `json:"TOV"`
	Fouls      int     `json:"PF"`
	FGMade     int     `json:"FGM"`
	FGAttempt  int     `json:"FGA"`
	FGPercent  float64 `json:"FG%"`
	FG3Made    int     `json:"FG3M"`
	FG3Attempt int     `json:"FG3A"`
	FG3Percent float64 `json:"FG3%"`
	FTMade     int     `json:"FTM"`
	FTAttempt  int     `json:"FTA"`
	FTPercent  float64 `json:"FT%"`
}

// displayStats converts stored counting stats to their display form.
func displayStats(c store.CountingStats) StatLine {
	return StatLine{
		Minutes:    c.Minutes,
		Points:     c.Points,
		OffenseReb: c.OffenseReb,
		DefenseReb: c.DefenseReb,
		Rebounds:   c.Rebounds,
		Assists:    c.Assists,
		Steals:     c.Steals,
		Blocks:     c.Blocks,
		Turnovers:  c.Turnovers,
		Fouls:      c.Fouls,
		FGMade:     c.FGMade,
		FGAttempt:  c.FGAttempt,
		FGPercent:  normalize.Percent(c.FGPercent),
		FG3Made:    c.FG3Made,
		FG3Attempt: c.FG3Attempt,
		FG3Percent: normalize.Percent(c.FG3Percent),
		FTMade:     c.FTMade,
		FTAttempt:  c.FTAttempt,
		FTPercent:  normalize.Percent(c.FTPercent),
	}
}

// ageFrom derives a player's age in whole years from the stored birth
// date. Age is never persisted.
func ageFrom(birthDate string, now time.Time) int {
	born, err := time.Parse("2006-01-02T15:04:05", birthDate)
	if err != nil {
		if born, err = time.Parse("2006-01-02", birthDate); err != nil {
			return 0
		}
	}
	age := now.Year() - born.Year()
	if now.YearDay() < born.YearDay() {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// recordWins parses the win side of a "26-15" record string.
func recordWins(record string) int {
	parts := strings.SplitN(record, "-", 2)
	n, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	return n
}
