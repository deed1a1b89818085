package weather

import (
	"fmt"
	"strings"
)

// ID identifies the weather for one day at one location context.
// The set is open: mods contribute their own identifiers.
type ID string

// Unknown is returned by collaborators that could not resolve the weather.
const Unknown ID = ""

// Base game weather codes.
const (
	Sunny     ID = "Sun"
	Rain      ID = "Rain"
	Debris    ID = "Wind"
	Lightning ID = "Storm"
	Festival  ID = "Festival"
	Snow      ID = "Snow"
	Wedding   ID = "Wedding"
	GreenRain ID = "GreenRain"
)

// Weather Wonders codes.
const (
	AcidRain     ID = "WeatherWonders.AcidRain"
	Blizzard     ID = "WeatherWonders.Blizzard"
	Cloudy       ID = "WeatherWonders.Cloudy"
	Deluge       ID = "WeatherWonders.Deluge"
	Drizzle      ID = "WeatherWonders.Drizzle"
	DryLightning ID = "WeatherWonders.DryLightning"
	Hailstorm    ID = "WeatherWonders.Hailstorm"
	Heatwave     ID = "WeatherWonders.Heatwave"
	Mist         ID = "WeatherWonders.Mist"
	MuddyRain    ID = "WeatherWonders.MuddyRain"
	SnowRainMix  ID = "WeatherWonders.SnowRainMix"
	Sandstorm    ID = "WeatherWonders.Sandstorm"
	BloodMoon    ID = "WeatherWonders.BloodMoon"
	BlueMoon     ID = "WeatherWonders.BlueMoon"
	HarvestMoon  ID = "WeatherWonders.HarvestMoon"
)

// Season is the in-game season.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// Seasons lists the seasons in calendar order.
var Seasons = []Season{Spring, Summer, Fall, Winter}

// Index returns the position of s in the calendar, or -1.
func (s Season) Index() int {
	for i, season := range Seasons {
		if season == s {
			return i
		}
	}
	return -1
}

// ParseSeason accepts any casing of a season name.
func ParseSeason(s string) (Season, error) {
	season := Season(strings.ToLower(strings.TrimSpace(s)))
	if season.Index() < 0 {
		return "", fmt.Errorf("unknown season %q", s)
	}
	return season, nil
}

// Location is a location-context key; every location inside one context
// shares the same weather.
type Location string

const (
	LocationDefault Location = "Default"
	LocationIsland  Location = "Island"
)

// Category groups identifiers for display policies.
type Category int

const (
	NotRaining Category = iota + 1
	Raining
)

func (c Category) String() string {
	switch c {
	case Raining:
		return "raining"
	case NotRaining:
		return "not_raining"
	default:
		return "none"
	}
}

// ParseCategory maps "raining"/"not_raining" to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_") {
	case "raining":
		return Raining, nil
	case "not_raining":
		return NotRaining, nil
	}
	return 0, fmt.Errorf("unknown weather category %q", s)
}
