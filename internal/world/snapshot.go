// Package world models the game state a forecast is read from.
package world

import (
	"time"

	"github.com/i474232898/forecaster-text/internal/weather"
)

// Snapshot is the world state a game host publishes for one day.
type Snapshot struct {
	World     string    `json:"world"`
	Timestamp time.Time `json:"timestamp"` // always UTC
	Date      Date      `json:"date" validate:"required"`

	// WeatherForTomorrow is the host's own rolled weather for the valley.
	// Only the host process reads it.
	WeatherForTomorrow weather.ID `json:"weatherForTomorrow"`

	// Net is the state replicated to every client.
	Net NetState `json:"net"`

	Weddings []Date `json:"weddings,omitempty" validate:"dive"`
}

// NetState is the replicated part of the world.
type NetState struct {
	WeatherForTomorrow weather.ID                      `json:"weatherForTomorrow"`
	Locations          map[weather.Location]weather.ID `json:"locations,omitempty"`
}

// Role says which copy of the world state a process trusts.
type Role string

const (
	RoleHost    Role = "host"
	RoleReplica Role = "replica"
)

// Provider answers forecast questions from one snapshot.
type Provider struct {
	snapshot Snapshot
	role     Role
	calendar *Calendar
}

// NewProvider creates a Provider. A nil calendar disables date rules.
func NewProvider(snapshot Snapshot, role Role, calendar *Calendar) *Provider {
	return &Provider{
		snapshot: snapshot,
		role:     role,
		calendar: calendar,
	}
}

// Tomorrow returns the date after the snapshot date. The snapshot is not
// modified.
func (p *Provider) Tomorrow() Date {
	return p.snapshot.Date.AddDays(1)
}

// TomorrowWeather returns tomorrow's weather for location. The valley
// reads the host's value on the host and the replicated value elsewhere,
// then applies the calendar. Other locations always read replicated state.
func (p *Provider) TomorrowWeather(location weather.Location) weather.ID {
	if location == weather.LocationDefault {
		rolled := p.snapshot.Net.WeatherForTomorrow
		if p.role == RoleHost {
			rolled = p.snapshot.WeatherForTomorrow
		}
		if p.calendar == nil {
			return rolled
		}
		return p.calendar.Modify(p.Tomorrow(), rolled, p.snapshot.Weddings)
	}

	if id, ok := p.snapshot.Net.Locations[location]; ok {
		return id
	}
	return weather.Unknown
}

// CurrentSeason returns the season of the snapshot date.
func (p *Provider) CurrentSeason() weather.Season {
	return p.snapshot.Date.Season
}
