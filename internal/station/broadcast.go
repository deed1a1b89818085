package station

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/i474232898/forecaster-text/internal/farmer"
	"github.com/i474232898/forecaster-text/internal/forecast"
	"github.com/i474232898/forecaster-text/internal/i18n"
	"github.com/i474232898/forecaster-text/internal/message"
	"github.com/i474232898/forecaster-text/internal/weather"
	"github.com/i474232898/forecaster-text/internal/world"
)

// Broadcast is one forecast shown on the TV.
type Broadcast struct {
	Channel  string           `json:"channel"`
	Key      string           `json:"key"`
	Location weather.Location `json:"location,omitempty"`
	Icons    []weather.Icon   `json:"icons"`
	Text     string           `json:"text"`
}

// Report is everything the TV shows a viewer for one world.
type Report struct {
	World      string      `json:"world"`
	Date       world.Date  `json:"date"`
	Locale     string      `json:"locale"`
	Broadcasts []Broadcast `json:"broadcasts"`
}

func newBroadcast(ch forecast.Message, msg message.Message, tr message.Translator) Broadcast {
	return Broadcast{
		Channel:  ch.Name,
		Key:      msg.Key,
		Location: ch.Location,
		Icons:    msg.Icons(),
		Text:     msg.Render(tr),
	}
}

// Forecast evaluates every channel for the farmer watching in worldID.
// uuid.Nil stands for a viewer with no progress, who only sees ungated
// channels. Suppressed channels are left out of the report.
func (s *Service) Forecast(ctx context.Context, worldID string, farmerID uuid.UUID, locale string) (Report, error) {
	snap, err := s.snapshots.GetLatest(worldID)
	if err != nil {
		return Report{}, fmt.Errorf("forecast %s: %w", worldID, err)
	}

	progress := farmer.NewProgress()
	var viewer forecast.Viewer
	if farmerID != uuid.Nil {
		f, err := s.farmers.GetFarmer(ctx, farmerID)
		if err != nil {
			return Report{}, fmt.Errorf("forecast %s: %w", worldID, err)
		}
		progress = farmer.NewProgress(f)
		viewer = f.Viewer()
	}

	provider := world.NewProvider(snap, s.role, s.calendar)
	req := forecast.Request{
		Viewer:      viewer,
		World:       provider,
		Eligibility: progress,
		Config:      s.Settings(),
		Table:       s.table,
	}

	tr := s.translator(locale)
	report := Report{
		World:      worldID,
		Date:       provider.Tomorrow(),
		Locale:     tr.Locale(),
		Broadcasts: []Broadcast{},
	}
	for _, ch := range forecast.Channels() {
		msg, ok := ch.Produce(req)
		if !ok {
			continue
		}
		report.Broadcasts = append(report.Broadcasts, newBroadcast(ch, msg, tr))
	}
	return report, nil
}

// TestForecast renders the fixed test channel for the named icon.
func (s *Service) TestForecast(iconName, locale string) (Broadcast, error) {
	icon, err := weather.ParseIcon(iconName)
	if err != nil {
		return Broadcast{}, err
	}

	ch := forecast.FixedTest(icon)
	msg, _ := ch.Produce(forecast.Request{})
	return newBroadcast(ch, msg, s.translator(locale)), nil
}

// translator picks the catalog locale for a request, using the configured
// default when locale is empty.
func (s *Service) translator(locale string) *i18n.Translator {
	if strings.TrimSpace(locale) == "" {
		locale = s.locale
	}
	return s.catalog.For(locale)
}

// WeatherDefinition describes a weather registered at runtime. Icons and
// the category are given by name.
type WeatherDefinition struct {
	ID       string              `json:"id" validate:"required"`
	Icons    []string            `json:"icons" validate:"required,min=1,dive,required"`
	Seasonal map[string][]string `json:"seasonal,omitempty" validate:"omitempty,dive,min=1,dive,required"`
	Category string              `json:"category,omitempty"`
}

// Weathers lists every registered weather identifier.
func (s *Service) Weathers() []weather.Definition {
	return s.table.Known()
}

// RegisterWeather adds or replaces a weather. A replaced id keeps nothing
// from its previous definition. The definition is checked in full before
// anything is registered.
func (s *Service) RegisterWeather(def WeatherDefinition) (weather.Definition, error) {
	id := weather.ID(strings.TrimSpace(def.ID))
	if id == weather.Unknown {
		return weather.Definition{}, fmt.Errorf("%w: id is required", ErrInvalidWeather)
	}
	if len(def.Icons) == 0 {
		return weather.Definition{}, fmt.Errorf("%w: %s has no icons", ErrInvalidWeather, id)
	}

	icons, err := parseIcons(def.Icons)
	if err != nil {
		return weather.Definition{}, fmt.Errorf("%w: %s: %w", ErrInvalidWeather, id, err)
	}

	seasonal := make(map[weather.Season][]weather.Icon, len(def.Seasonal))
	for name, names := range def.Seasonal {
		season, err := weather.ParseSeason(name)
		if err != nil {
			return weather.Definition{}, fmt.Errorf("%w: %s: %w", ErrInvalidWeather, id, err)
		}
		if len(names) == 0 {
			return weather.Definition{}, fmt.Errorf("%w: %s has no icons for %s", ErrInvalidWeather, id, season)
		}
		seasonIcons, err := parseIcons(names)
		if err != nil {
			return weather.Definition{}, fmt.Errorf("%w: %s: %w", ErrInvalidWeather, id, err)
		}
		seasonal[season] = seasonIcons
	}

	var category weather.Category
	if strings.TrimSpace(def.Category) != "" {
		category, err = weather.ParseCategory(def.Category)
		if err != nil {
			return weather.Definition{}, fmt.Errorf("%w: %s: %w", ErrInvalidWeather, id, err)
		}
	}

	s.table.Replace(id, icons, seasonal, category)

	for _, known := range s.table.Known() {
		if known.ID == id {
			return known, nil
		}
	}
	return weather.Definition{ID: id, Icons: icons}, nil
}

func parseIcons(names []string) ([]weather.Icon, error) {
	icons := make([]weather.Icon, 0, len(names))
	for _, name := range names {
		icon, err := weather.ParseIcon(name)
		if err != nil {
			return nil, err
		}
		icons = append(icons, icon)
	}
	return icons, nil
}
