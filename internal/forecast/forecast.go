// Package forecast decides which TV weather forecasts a viewer sees.
//
// A Message is one forecast channel. Producing it checks the viewer's
// eligibility, the channel's DisplayPolicy and tomorrow's weather, then
// composes the icons for that weather. Every miss is reported as ok == false;
// a suppressed forecast is a normal outcome, not an error.
package forecast

import (
	"github.com/i474232898/forecaster-text/internal/message"
	"github.com/i474232898/forecaster-text/internal/weather"
)

// Viewer identifies the player watching the TV.
type Viewer string

// Setting names a configured DisplayPolicy.
type Setting string

const (
	SettingPrimaryWeather   Setting = "primary_weather"
	SettingSecondaryWeather Setting = "secondary_weather"
)

// Translation keys.
const (
	KeyPelicanTown  = "tv.weather.pelican_town"
	KeyGingerIsland = "tv.weather.ginger_island"
)

// WorldState answers questions about the game world. Implementations pick
// the authoritative or replicated source themselves.
type WorldState interface {
	TomorrowWeather(location weather.Location) weather.ID
	CurrentSeason() weather.Season
}

// Eligibility reports whether a viewer has unlocked a location.
type Eligibility interface {
	HasUnlocked(viewer Viewer, location weather.Location) bool
}

// ConfigSource exposes the configured policy for each Setting.
type ConfigSource interface {
	DisplayPolicy(setting Setting) DisplayPolicy
}

// Settings is the plain ConfigSource used by the application.
type Settings struct {
	PrimaryWeather   DisplayPolicy `json:"primaryWeather"`
	SecondaryWeather DisplayPolicy `json:"secondaryWeather"`
}

// DisplayPolicy implements ConfigSource. Unknown settings are Never.
func (s Settings) DisplayPolicy(setting Setting) DisplayPolicy {
	switch setting {
	case SettingPrimaryWeather:
		return s.PrimaryWeather
	case SettingSecondaryWeather:
		return s.SecondaryWeather
	default:
		return Never
	}
}

// Classifier maps a weather id to its icons.
type Classifier interface {
	CategoryLookup
	Classify(id weather.ID, season weather.Season) ([]weather.Icon, bool)
}

// Request carries everything one Produce call reads.
type Request struct {
	Viewer      Viewer
	World       WorldState
	Eligibility Eligibility
	Config      ConfigSource
	// Table defaults to weather.DefaultTable() when nil.
	Table Classifier
}

// Message is a forecast channel.
type Message struct {
	Name     string
	Key      string
	Location weather.Location
	Setting  Setting
	// Unlock, when set, requires the viewer to have unlocked Location.
	Unlock bool
	// Fixed, when non-empty, is shown as is for every viewer.
	Fixed []weather.Icon
}

// PrimaryLocation forecasts the valley for every viewer.
func PrimaryLocation() Message {
	return Message{
		Name:     "pelican_town",
		Key:      KeyPelicanTown,
		Location: weather.LocationDefault,
		Setting:  SettingPrimaryWeather,
	}
}

// SecondaryLocation forecasts the island for viewers who have been there.
func SecondaryLocation() Message {
	return Message{
		Name:     "ginger_island",
		Key:      KeyGingerIsland,
		Location: weather.LocationIsland,
		Setting:  SettingSecondaryWeather,
		Unlock:   true,
	}
}

// FixedTest always shows icon.
func FixedTest(icon weather.Icon) Message {
	return Message{
		Name:  "test",
		Key:   KeyPelicanTown,
		Fixed: []weather.Icon{icon},
	}
}

// Channels returns the channels shown on the TV, in display order.
func Channels() []Message {
	return []Message{PrimaryLocation(), SecondaryLocation()}
}

var defaultTable = weather.DefaultTable()

// Produce returns the composed forecast for req.Viewer, or false when it is
// suppressed.
func (m Message) Produce(req Request) (message.Message, bool) {
	if len(m.Fixed) > 0 {
		return message.Compose(m.Key, m.Fixed), true
	}

	if m.Unlock {
		if req.Eligibility == nil || !req.Eligibility.HasUnlocked(req.Viewer, m.Location) {
			return message.Message{}, false
		}
	}

	if req.Config == nil || req.World == nil {
		return message.Message{}, false
	}
	policy := req.Config.DisplayPolicy(m.Setting)
	id := req.World.TomorrowWeather(m.Location)

	table := req.Table
	if table == nil {
		table = defaultTable
	}

	if !ShouldShow(policy, id, table) {
		return message.Message{}, false
	}

	icons, ok := table.Classify(id, req.World.CurrentSeason())
	if !ok || len(icons) == 0 {
		return message.Message{}, false
	}

	return message.Compose(m.Key, icons), true
}
