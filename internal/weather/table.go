package weather

import (
	"sort"
	"sync"
)

type entry struct {
	icons    []Icon
	seasonal map[Season][]Icon
}

// Table holds the icon table and the category table. Both are keyed by
// ID but populated independently: an id may have icons without a category
// or the other way round.
type Table struct {
	mu         sync.RWMutex
	entries    map[ID]*entry
	categories map[ID]Category
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		entries:    make(map[ID]*entry),
		categories: make(map[ID]Category),
	}
}

// Register sets the icon sequence shown for id, replacing any previous one.
// Seasonal overrides already registered for id are kept.
func (t *Table) Register(id ID, icons ...Icon) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entry(id)
	e.icons = append([]Icon(nil), icons...)
}

// RegisterSeasonal sets the icons shown for id during one season.
func (t *Table) RegisterSeasonal(id ID, season Season, icons ...Icon) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entry(id)
	if e.seasonal == nil {
		e.seasonal = make(map[Season][]Icon)
	}
	e.seasonal[season] = append([]Icon(nil), icons...)
}

// Replace swaps everything known about id in one step: icons, seasonal
// overrides and category. A zero category leaves id uncategorized.
func (t *Table) Replace(id ID, icons []Icon, seasonal map[Season][]Icon, category Category) {
	e := &entry{icons: append([]Icon(nil), icons...)}
	if len(seasonal) > 0 {
		e.seasonal = make(map[Season][]Icon, len(seasonal))
		for season, s := range seasonal {
			e.seasonal[season] = append([]Icon(nil), s...)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[id] = e
	if category == 0 {
		delete(t.categories, id)
		return
	}
	t.categories[id] = category
}

// Categorize files id under the raining or not-raining category.
func (t *Table) Categorize(id ID, category Category) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.categories[id] = category
}

func (t *Table) entry(id ID) *entry {
	e, ok := t.entries[id]
	if !ok {
		e = &entry{}
		t.entries[id] = e
	}
	return e
}

// Classify returns the ordered icons for id in the given season. It
// returns false for unknown ids and for entries without icons.
func (t *Table) Classify(id ID, season Season) ([]Icon, bool) {
	if t == nil {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[id]
	if !ok {
		return nil, false
	}

	icons := e.icons
	if seasonal, ok := e.seasonal[season]; ok {
		icons = seasonal
	}
	if len(icons) == 0 {
		return nil, false
	}
	return append([]Icon(nil), icons...), true
}

// Category returns the display category for id.
func (t *Table) Category(id ID) (Category, bool) {
	if t == nil {
		return 0, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.categories[id]
	return c, ok
}

// Definition describes one identifier as currently registered.
type Definition struct {
	ID       ID                `json:"id"`
	Icons    []Icon            `json:"icons,omitempty"`
	Seasonal map[Season][]Icon `json:"seasonal,omitempty"`
	Category string            `json:"category"`
}

// Known lists every identifier present in either table, sorted by id.
func (t *Table) Known() []Definition {
	if t == nil {
		return []Definition{}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make(map[ID]struct{}, len(t.entries))
	for id := range t.entries {
		ids[id] = struct{}{}
	}
	for id := range t.categories {
		ids[id] = struct{}{}
	}

	out := make([]Definition, 0, len(ids))
	for id := range ids {
		def := Definition{ID: id, Category: t.categories[id].String()}
		if e, ok := t.entries[id]; ok {
			def.Icons = append([]Icon(nil), e.icons...)
			if len(e.seasonal) > 0 {
				def.Seasonal = make(map[Season][]Icon, len(e.seasonal))
				for season, icons := range e.seasonal {
					def.Seasonal[season] = append([]Icon(nil), icons...)
				}
			}
		}
		out = append(out, def)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Audit returns ids that have icons but no category (never shown under the
// raining/not-raining policies) and ids that have a category but no icons.
func (t *Table) Audit() (uncategorized, iconless []ID) {
	if t == nil {
		return nil, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	for id, e := range t.entries {
		if _, ok := t.categories[id]; !ok && (len(e.icons) > 0 || len(e.seasonal) > 0) {
			uncategorized = append(uncategorized, id)
		}
	}
	for id := range t.categories {
		e, ok := t.entries[id]
		if !ok || (len(e.icons) == 0 && len(e.seasonal) == 0) {
			iconless = append(iconless, id)
		}
	}

	sort.Slice(uncategorized, func(i, j int) bool { return uncategorized[i] < uncategorized[j] })
	sort.Slice(iconless, func(i, j int) bool { return iconless[i] < iconless[j] })
	return uncategorized, iconless
}

// DefaultTable returns a table loaded with the base game and Weather Wonders
// identifiers.
func DefaultTable() *Table {
	t := NewTable()

	// Base game
	t.Register(Sunny, IconSun)
	t.Register(Festival, IconSun, IconFestival)
	t.Register(Wedding, IconSun, IconWedding)
	t.Register(Rain, IconRain)
	t.Register(Debris, IconSun)
	t.RegisterSeasonal(Debris, Winter, IconSnow)
	t.Register(Lightning, IconLightning, IconRain)
	t.Register(Snow, IconSnow)

	t.Categorize(Sunny, NotRaining)
	t.Categorize(Festival, NotRaining)
	t.Categorize(Wedding, NotRaining)
	t.Categorize(Rain, Raining)
	t.Categorize(Debris, NotRaining)
	t.Categorize(Lightning, Raining)
	t.Categorize(Snow, NotRaining)

	// Weather Wonders
	t.Register(AcidRain, IconRain, IconAcidRain)
	t.Register(Blizzard, IconSnow, IconBlizzard)
	t.Register(Cloudy, IconCloudy)
	t.Register(Deluge, IconRain, IconDeluge)
	t.Register(Drizzle, IconDrizzle)
	t.Register(DryLightning, IconDryLightning)
	t.Register(Hailstorm, IconSnow, IconHailstorm)
	t.Register(Heatwave, IconHeatwave)
	t.Register(Mist, IconMist)
	t.Register(MuddyRain, IconRain, IconMuddyRain)
	t.Register(SnowRainMix, IconRain, IconSnowRainMix)
	t.Register(Sandstorm, IconHeatwave, IconSandstorm)

	t.Categorize(AcidRain, Raining)
	t.Categorize(Blizzard, Raining)
	t.Categorize(Cloudy, NotRaining)
	t.Categorize(Deluge, Raining)
	t.Categorize(Drizzle, Raining)
	t.Categorize(DryLightning, NotRaining)
	t.Categorize(Hailstorm, Raining)
	t.Categorize(Heatwave, NotRaining)
	t.Categorize(Mist, NotRaining)
	t.Categorize(MuddyRain, Raining)
	t.Categorize(SnowRainMix, Raining)
	t.Categorize(Sandstorm, Raining)

	// Weather Wonders night events
	t.Register(BloodMoon, IconMoon, IconBloodMoon)
	t.Register(BlueMoon, IconMoon, IconBlueMoon)
	t.Register(HarvestMoon, IconMoon, IconHarvestMoon)

	t.Categorize(BloodMoon, NotRaining)
	t.Categorize(BlueMoon, NotRaining)
	t.Categorize(HarvestMoon, NotRaining)

	return t
}
