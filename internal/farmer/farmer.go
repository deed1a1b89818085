// Package farmer tracks player progress that gates forecast channels.
package farmer

import (
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/forecaster-text/internal/forecast"
	"github.com/i474232898/forecaster-text/internal/weather"
)

// MailVisitedIsland is received after the first boat trip to the island.
const MailVisitedIsland = "Visited_Island"

// UnlockFlags maps a location to the mail flag that unlocks it. Locations
// not listed are open to everyone.
var UnlockFlags = map[weather.Location]string{
	weather.LocationIsland: MailVisitedIsland,
}

// Farmer is one player in a world.
type Farmer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Mail      []string  `json:"mail"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasOrWillReceiveMail reports whether flag is in the farmer's mail.
func (f Farmer) HasOrWillReceiveMail(flag string) bool {
	for _, m := range f.Mail {
		if m == flag {
			return true
		}
	}
	return false
}

// Viewer returns the forecast viewer id of f.
func (f Farmer) Viewer() forecast.Viewer {
	return forecast.Viewer(f.ID.String())
}

// Progress answers unlock questions for a set of loaded farmers.
type Progress struct {
	farmers map[forecast.Viewer]Farmer
}

// NewProgress indexes farmers by viewer id.
func NewProgress(farmers ...Farmer) *Progress {
	p := &Progress{farmers: make(map[forecast.Viewer]Farmer, len(farmers))}
	for _, f := range farmers {
		p.farmers[f.Viewer()] = f
	}
	return p
}

// HasUnlocked implements forecast.Eligibility. Unknown viewers have
// unlocked nothing.
func (p *Progress) HasUnlocked(viewer forecast.Viewer, location weather.Location) bool {
	f, ok := p.farmers[viewer]
	if !ok {
		return false
	}
	flag, gated := UnlockFlags[location]
	if !gated {
		return true
	}
	return f.HasOrWillReceiveMail(flag)
}
