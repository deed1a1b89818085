package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownIcon is returned when an icon name does not match any Icon.
var ErrUnknownIcon = errors.New("unknown weather icon")

// Icon is a display token shown in a forecast message.
type Icon int

const (
	IconSun Icon = iota + 1
	IconRain
	IconSnow
	IconFestival
	IconWedding
	IconLightning
	IconAcidRain
	IconBlizzard
	IconCloudy
	IconDeluge
	IconDrizzle
	IconDryLightning
	IconHailstorm
	IconHeatwave
	IconMist
	IconMuddyRain
	IconSnowRainMix
	IconSandstorm
	IconMoon
	IconBloodMoon
	IconBlueMoon
	IconHarvestMoon
)

type iconInfo struct {
	name  string
	glyph string
}

var icons = map[Icon]iconInfo{
	IconSun:          {"sun", "☀"},
	IconRain:         {"rain", "🌧"},
	IconSnow:         {"snow", "❄"},
	IconFestival:     {"festival", "🎪"},
	IconWedding:      {"wedding", "💍"},
	IconLightning:    {"lightning", "⚡"},
	IconAcidRain:     {"acid_rain", "☣"},
	IconBlizzard:     {"blizzard", "🌨"},
	IconCloudy:       {"cloudy", "☁"},
	IconDeluge:       {"deluge", "🌊"},
	IconDrizzle:      {"drizzle", "🌦"},
	IconDryLightning: {"dry_lightning", "🌩"},
	IconHailstorm:    {"hailstorm", "🧊"},
	IconHeatwave:     {"heatwave", "🔥"},
	IconMist:         {"mist", "🌫"},
	IconMuddyRain:    {"muddy_rain", "🟤"},
	IconSnowRainMix:  {"snow_rain_mix", "⛆"},
	IconSandstorm:    {"sandstorm", "🏜"},
	IconMoon:         {"moon", "🌙"},
	IconBloodMoon:    {"blood_moon", "🔴"},
	IconBlueMoon:     {"blue_moon", "🔵"},
	IconHarvestMoon:  {"harvest_moon", "🌕"},
}

// String returns the icon name, e.g. "acid_rain".
func (i Icon) String() string {
	if info, ok := icons[i]; ok {
		return info.name
	}
	return fmt.Sprintf("icon(%d)", int(i))
}

// Glyph returns the character used when rendering to text.
func (i Icon) Glyph() string {
	if info, ok := icons[i]; ok {
		return info.glyph
	}
	return "?"
}

// Valid reports whether i is a declared icon.
func (i Icon) Valid() bool {
	_, ok := icons[i]
	return ok
}

// ParseIcon resolves a name like "acid rain", "ACID_RAIN" or "acid-rain".
func ParseIcon(s string) (Icon, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	for icon, info := range icons {
		if info.name == name {
			return icon, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIcon, s)
}

// AllIcons returns every icon in declaration order.
func AllIcons() []Icon {
	out := make([]Icon, 0, len(icons))
	for i := IconSun; i <= IconHarvestMoon; i++ {
		out = append(out, i)
	}
	return out
}

func (i Icon) MarshalJSON() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIcon, int(i))
	}
	return json.Marshal(i.String())
}

func (i *Icon) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	icon, err := ParseIcon(name)
	if err != nil {
		return err
	}
	*i = icon
	return nil
}
