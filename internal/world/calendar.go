package world

import "github.com/i474232898/forecaster-text/internal/weather"

// Calendar applies the fixed-date weather rules of the valley.
type Calendar struct {
	festivals map[weather.Season]map[int]bool
}

// DefaultCalendar returns the base game festival days.
func DefaultCalendar() *Calendar {
	return &Calendar{
		festivals: map[weather.Season]map[int]bool{
			weather.Spring: {13: true, 24: true},
			weather.Summer: {11: true, 28: true},
			weather.Fall:   {16: true, 27: true},
			weather.Winter: {8: true, 25: true},
		},
	}
}

// IsFestival reports whether a festival is held on d.
func (c *Calendar) IsFestival(d Date) bool {
	if c == nil {
		return false
	}
	return c.festivals[d.Season][d.Day]
}

// Modify returns the weather that will actually happen on d given the
// rolled weather. Later rules win: first days are sunny, the third day of
// a new save rains, festivals and weddings replace everything.
func (c *Calendar) Modify(d Date, rolled weather.ID, weddings []Date) weather.ID {
	out := rolled

	daysPlayed := d.TotalDays() + 1
	if d.Day == 1 || daysPlayed <= 4 {
		out = weather.Sunny
	}
	if daysPlayed == 3 {
		out = weather.Rain
	}
	if c.IsFestival(d) {
		out = weather.Festival
	}
	for _, w := range weddings {
		if w == d {
			out = weather.Wedding
			break
		}
	}
	return out
}
