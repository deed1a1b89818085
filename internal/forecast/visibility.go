package forecast

import "github.com/i474232898/forecaster-text/internal/weather"

// CategoryLookup reports the display category of a weather id.
type CategoryLookup interface {
	Category(id weather.ID) (weather.Category, bool)
}

// ShouldShow decides whether a forecast for id passes policy. Never and
// Always short-circuit; the other policies need a category entry for id,
// and ids without one are never shown.
func ShouldShow(policy DisplayPolicy, id weather.ID, categories CategoryLookup) bool {
	switch policy {
	case Never:
		return false
	case Always:
		return true
	}

	if categories == nil {
		return false
	}
	category, ok := categories.Category(id)
	if !ok {
		return false
	}

	switch policy {
	case OnlyWhenRaining:
		return category == weather.Raining
	case OnlyWhenNotRaining:
		return category == weather.NotRaining
	default:
		return false
	}
}
