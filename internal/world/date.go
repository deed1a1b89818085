package world

import (
	"fmt"

	"github.com/i474232898/forecaster-text/internal/weather"
)

const (
	DaysPerSeason = 28
	DaysPerYear   = DaysPerSeason * 4
)

// Date is a day on the in-game calendar. Year and Day start at 1.
type Date struct {
	Year   int            `json:"year" validate:"required,min=1"`
	Season weather.Season `json:"season" validate:"required,oneof=spring summer fall winter"`
	Day    int            `json:"day" validate:"required,min=1,max=28"`
}

// TotalDays counts days since spring 1 of year 1, which is day 0.
func (d Date) TotalDays() int {
	season := d.Season.Index()
	if season < 0 {
		season = 0
	}
	return (d.Year-1)*DaysPerYear + season*DaysPerSeason + (d.Day - 1)
}

// DateFromTotalDays is the inverse of TotalDays.
func DateFromTotalDays(total int) Date {
	if total < 0 {
		total = 0
	}
	return Date{
		Year:   total/DaysPerYear + 1,
		Season: weather.Seasons[(total%DaysPerYear)/DaysPerSeason],
		Day:    total%DaysPerSeason + 1,
	}
}

// AddDays returns a copy of d moved n days.
func (d Date) AddDays(n int) Date {
	return DateFromTotalDays(d.TotalDays() + n)
}

func (d Date) String() string {
	return fmt.Sprintf("%s %d, year %d", d.Season, d.Day, d.Year)
}
