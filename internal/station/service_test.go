package station

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/forecaster-text/internal/farmer"
	"github.com/i474232898/forecaster-text/internal/forecast"
	"github.com/i474232898/forecaster-text/internal/i18n"
	"github.com/i474232898/forecaster-text/internal/store"
	"github.com/i474232898/forecaster-text/internal/weather"
	"github.com/i474232898/forecaster-text/internal/world"
)

type fakeSource struct {
	snap  world.Snapshot
	err   error
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchSnapshot(ctx context.Context, worldID string) (world.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func newTestService(t *testing.T, opts ...Option) (*Service, *store.MemoryStore, *store.FarmerStore) {
	t.Helper()

	farmers, err := store.OpenFarmerStore(filepath.Join(t.TempDir(), "farmers.db"))
	if err != nil {
		t.Fatalf("OpenFarmerStore: %v", err)
	}
	t.Cleanup(func() { _ = farmers.Close() })

	snapshots := store.NewMemoryStore(0, 0)
	return NewService(snapshots, farmers, opts...), snapshots, farmers
}

// testSnapshot rolls host and replicated weather differently so tests can
// tell which one was read.
func testSnapshot() world.Snapshot {
	return world.Snapshot{
		Date:               world.Date{Year: 1, Season: weather.Spring, Day: 9},
		WeatherForTomorrow: weather.Rain,
		Net: world.NetState{
			WeatherForTomorrow: weather.Sunny,
			Locations: map[weather.Location]weather.ID{
				weather.LocationIsland: weather.Lightning,
			},
		},
	}
}

func channels(r Report) []string {
	out := make([]string, 0, len(r.Broadcasts))
	for _, b := range r.Broadcasts {
		out = append(out, b.Channel)
	}
	return out
}

func TestForecastGatesIslandOnMail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SaveSnapshot("farm", testSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	f, err := svc.CreateFarmer(ctx, "Abigail")
	if err != nil {
		t.Fatalf("CreateFarmer: %v", err)
	}

	report, err := svc.Forecast(ctx, "farm", f.ID, "")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if got := channels(report); !reflect.DeepEqual(got, []string{"pelican_town"}) {
		t.Fatalf("channels before island visit = %v", got)
	}
	b := report.Broadcasts[0]
	if !reflect.DeepEqual(b.Icons, []weather.Icon{weather.IconRain}) {
		t.Fatalf("icons = %v, want host-rolled rain", b.Icons)
	}
	if want := "Tomorrow in Pelican Town: ..." + weather.IconRain.Glyph(); b.Text != want {
		t.Fatalf("text = %q, want %q", b.Text, want)
	}
	if report.Date != (world.Date{Year: 1, Season: weather.Spring, Day: 10}) {
		t.Fatalf("date = %v, want tomorrow", report.Date)
	}

	if _, err := svc.AddMail(ctx, f.ID, farmer.MailVisitedIsland); err != nil {
		t.Fatalf("AddMail: %v", err)
	}
	report, err = svc.Forecast(ctx, "farm", f.ID, "es-ES")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if got := channels(report); !reflect.DeepEqual(got, []string{"pelican_town", "ginger_island"}) {
		t.Fatalf("channels after island visit = %v", got)
	}
	island := report.Broadcasts[1]
	if !reflect.DeepEqual(island.Icons, []weather.Icon{weather.IconLightning, weather.IconRain}) {
		t.Fatalf("island icons = %v", island.Icons)
	}
	if report.Locale != "es-ES" {
		t.Fatalf("locale = %q", report.Locale)
	}
	if want := "Mañana en la Isla Jengibre: ..." + weather.IconLightning.Glyph() + " ..." + weather.IconRain.Glyph(); island.Text != want {
		t.Fatalf("island text = %q, want %q", island.Text, want)
	}
}

func TestForecastAnonymousViewer(t *testing.T) {
	svc, _, _ := newTestService(t)
	_ = svc.SaveSnapshot("farm", testSnapshot())

	report, err := svc.Forecast(context.Background(), "farm", uuid.Nil, "en-US")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if got := channels(report); !reflect.DeepEqual(got, []string{"pelican_town"}) {
		t.Fatalf("channels = %v", got)
	}
}

func TestForecastReplicaReadsReplicatedWeather(t *testing.T) {
	svc, snapshots, _ := newTestService(t, WithRole(world.RoleReplica))
	snapshots.SaveSnapshot("farm", testSnapshot())

	report, err := svc.Forecast(context.Background(), "farm", uuid.Nil, "")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(report.Broadcasts) != 1 || !reflect.DeepEqual(report.Broadcasts[0].Icons, []weather.Icon{weather.IconSun}) {
		t.Fatalf("broadcasts = %+v, want replicated sun", report.Broadcasts)
	}
}

func TestForecastErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Forecast(ctx, "missing", uuid.Nil, ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}

	_ = svc.SaveSnapshot("farm", testSnapshot())
	if _, err := svc.Forecast(ctx, "farm", uuid.New(), ""); !errors.Is(err, store.ErrFarmerNotFound) {
		t.Fatalf("expected store.ErrFarmerNotFound, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	svc, _, _ := newTestService(t)
	_ = svc.SaveSnapshot("farm", testSnapshot())

	got, err := svc.UpdateSettings("not raining", "")
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	want := forecast.Settings{PrimaryWeather: forecast.OnlyWhenNotRaining, SecondaryWeather: forecast.Always}
	if got != want || svc.Settings() != want {
		t.Fatalf("settings = %+v, want %+v", svc.Settings(), want)
	}

	// Tomorrow is rain on the host, so the valley channel is hidden.
	report, err := svc.Forecast(context.Background(), "farm", uuid.Nil, "")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(report.Broadcasts) != 0 {
		t.Fatalf("broadcasts = %+v, want none", report.Broadcasts)
	}

	if _, err := svc.UpdateSettings("never", "sometimes"); !errors.Is(err, forecast.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
	if svc.Settings() != want {
		t.Fatalf("settings changed by a failed update: %+v", svc.Settings())
	}
}

func TestSaveSnapshotOnReplica(t *testing.T) {
	svc, _, _ := newTestService(t, WithRole(world.RoleReplica))

	if err := svc.SaveSnapshot("farm", testSnapshot()); !errors.Is(err, ErrReadOnlyReplica) {
		t.Fatalf("expected ErrReadOnlyReplica, got %v", err)
	}
	if _, err := svc.Latest("farm"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}
}

func TestHistoryRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	now := time.Now()

	if _, err := svc.History("farm", now, now.Add(-time.Hour)); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestTestForecast(t *testing.T) {
	svc, _, _ := newTestService(t)

	b, err := svc.TestForecast("Blood Moon", "de-DE")
	if err != nil {
		t.Fatalf("TestForecast: %v", err)
	}
	if want := "Morgen in Pelikan-Stadt: ..." + weather.IconBloodMoon.Glyph(); b.Text != want {
		t.Fatalf("text = %q, want %q", b.Text, want)
	}
	if b.Channel != "test" {
		t.Fatalf("channel = %q", b.Channel)
	}

	if _, err := svc.TestForecast("rainbow", ""); !errors.Is(err, weather.ErrUnknownIcon) {
		t.Fatalf("expected ErrUnknownIcon, got %v", err)
	}
}

func TestRegisterWeather(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	def, err := svc.RegisterWeather(WeatherDefinition{
		ID:       "Custom.Fog",
		Icons:    []string{"mist"},
		Seasonal: map[string][]string{"winter": {"snow", "mist"}},
		Category: "not raining",
	})
	if err != nil {
		t.Fatalf("RegisterWeather: %v", err)
	}
	if def.Category != "not_raining" || !reflect.DeepEqual(def.Icons, []weather.Icon{weather.IconMist}) {
		t.Fatalf("definition = %+v", def)
	}

	snap := testSnapshot()
	snap.WeatherForTomorrow = "Custom.Fog"
	_ = svc.SaveSnapshot("farm", snap)

	report, err := svc.Forecast(ctx, "farm", uuid.Nil, "")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(report.Broadcasts) != 1 || !reflect.DeepEqual(report.Broadcasts[0].Icons, []weather.Icon{weather.IconMist}) {
		t.Fatalf("broadcasts = %+v", report.Broadcasts)
	}
}

func TestRegisterWeatherRejectsInvalid(t *testing.T) {
	svc, _, _ := newTestService(t)
	before := len(svc.Weathers())

	cases := []WeatherDefinition{
		{ID: " ", Icons: []string{"sun"}},
		{ID: "Custom.Empty"},
		{ID: "Custom.Bad", Icons: []string{"sun", "rainbow"}},
		{ID: "Custom.BadSeason", Icons: []string{"sun"}, Seasonal: map[string][]string{"monsoon": {"rain"}}},
		{ID: "Custom.BadCategory", Icons: []string{"sun"}, Category: "sometimes"},
	}
	for _, def := range cases {
		if _, err := svc.RegisterWeather(def); !errors.Is(err, ErrInvalidWeather) {
			t.Fatalf("RegisterWeather(%+v): expected ErrInvalidWeather, got %v", def, err)
		}
	}
	if after := len(svc.Weathers()); after != before {
		t.Fatalf("weathers changed from %d to %d", before, after)
	}
}

func TestSyncWorld(t *testing.T) {
	snap := testSnapshot()
	snap.Timestamp = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	source := &fakeSource{snap: snap}
	svc, snapshots, _ := newTestService(t, WithRole(world.RoleReplica), WithSource(source))
	ctx := context.Background()

	if err := svc.SyncWorld(ctx, "farm"); err != nil {
		t.Fatalf("SyncWorld: %v", err)
	}
	// Same timestamp again is not stored twice.
	if err := svc.SyncWorld(ctx, "farm"); err != nil {
		t.Fatalf("SyncWorld: %v", err)
	}
	all, err := snapshots.GetRange("farm", time.Time{}, snap.Timestamp)
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("stored %d snapshots, want 1", len(all))
	}

	source.err = errors.New("host down")
	if err := svc.SyncWorld(ctx, "farm"); err == nil {
		t.Fatal("expected sync error")
	}
	latest, err := svc.Latest("farm")
	if err != nil || !latest.Timestamp.Equal(snap.Timestamp) {
		t.Fatalf("last good snapshot not kept: %+v, %v", latest, err)
	}
}

func TestSyncWorldWithoutSource(t *testing.T) {
	svc, _, _ := newTestService(t, WithRole(world.RoleReplica))

	if err := svc.SyncWorld(context.Background(), "farm"); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestForecastUsesDefaultLocale(t *testing.T) {
	svc, _, _ := newTestService(t, WithDefaultLocale("de-DE"))
	_ = svc.SaveSnapshot("farm", testSnapshot())

	report, err := svc.Forecast(context.Background(), "farm", uuid.Nil, "")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if report.Locale != "de-DE" {
		t.Fatalf("locale = %q, want de-DE", report.Locale)
	}
	if want := "Morgen in Pelikan-Stadt: ..." + weather.IconRain.Glyph(); report.Broadcasts[0].Text != want {
		t.Fatalf("text = %q, want %q", report.Broadcasts[0].Text, want)
	}

	// An explicit locale still wins.
	report, err = svc.Forecast(context.Background(), "farm", uuid.Nil, "es-ES")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if report.Locale != "es-ES" {
		t.Fatalf("locale = %q, want es-ES", report.Locale)
	}

	b, err := svc.TestForecast("sun", "")
	if err != nil {
		t.Fatalf("TestForecast: %v", err)
	}
	if want := "Morgen in Pelikan-Stadt: ..." + weather.IconSun.Glyph(); b.Text != want {
		t.Fatalf("test text = %q, want %q", b.Text, want)
	}
}

func TestRegisterWeatherReplacesDebris(t *testing.T) {
	svc, _, _ := newTestService(t)

	def, err := svc.RegisterWeather(WeatherDefinition{ID: string(weather.Debris), Icons: []string{"cloudy"}})
	if err != nil {
		t.Fatalf("RegisterWeather: %v", err)
	}
	if len(def.Seasonal) != 0 || def.Category != "none" {
		t.Fatalf("definition kept old rules: %+v", def)
	}

	snap := testSnapshot()
	snap.Date = world.Date{Year: 1, Season: weather.Winter, Day: 9}
	snap.WeatherForTomorrow = weather.Debris
	_ = svc.SaveSnapshot("farm", snap)

	report, err := svc.Forecast(context.Background(), "farm", uuid.Nil, "")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(report.Broadcasts) != 1 || !reflect.DeepEqual(report.Broadcasts[0].Icons, []weather.Icon{weather.IconCloudy}) {
		t.Fatalf("broadcasts = %+v, want winter wind as cloudy", report.Broadcasts)
	}

	// Without a category the raining policies hide it.
	if _, err := svc.UpdateSettings("not raining", ""); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	report, _ = svc.Forecast(context.Background(), "farm", uuid.Nil, "")
	if len(report.Broadcasts) != 0 {
		t.Fatalf("broadcasts = %+v, want none", report.Broadcasts)
	}
}

func TestForecastWithCustomCatalog(t *testing.T) {
	catalog, err := i18n.NewCatalog(map[string]map[string]string{
		"en-US": {forecast.KeyPelicanTown: "Valley, 100% sure:"},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	svc, _, _ := newTestService(t, WithCatalog(catalog))
	_ = svc.SaveSnapshot("farm", testSnapshot())

	report, err := svc.Forecast(context.Background(), "farm", uuid.Nil, "de-DE")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if want := "Valley, 100% sure: ..." + weather.IconRain.Glyph(); report.Broadcasts[0].Text != want {
		t.Fatalf("text = %q, want %q", report.Broadcasts[0].Text, want)
	}
}

func TestForecastWithoutCalendar(t *testing.T) {
	// Tomorrow is summer 1, which the default calendar makes sunny.
	snap := testSnapshot()
	snap.Date = world.Date{Year: 1, Season: weather.Spring, Day: 28}

	withCalendar, _, _ := newTestService(t)
	withoutCalendar, _, _ := newTestService(t, WithCalendar(nil))

	for _, tc := range []struct {
		svc  *Service
		want weather.Icon
	}{
		{withCalendar, weather.IconSun},
		{withoutCalendar, weather.IconRain},
	} {
		_ = tc.svc.SaveSnapshot("farm", snap)
		report, err := tc.svc.Forecast(context.Background(), "farm", uuid.Nil, "")
		if err != nil {
			t.Fatalf("Forecast: %v", err)
		}
		if len(report.Broadcasts) != 1 || !reflect.DeepEqual(report.Broadcasts[0].Icons, []weather.Icon{tc.want}) {
			t.Fatalf("broadcasts = %+v, want %s", report.Broadcasts, tc.want)
		}
	}
}

func TestWorldsAreSorted(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, id := range []string{"farm-c", "farm-a", "farm-b"} {
		_ = svc.SaveSnapshot(id, testSnapshot())
	}

	if got := svc.Worlds(); !reflect.DeepEqual(got, []string{"farm-a", "farm-b", "farm-c"}) {
		t.Fatalf("Worlds() = %v", got)
	}
}

func TestWeathersWithoutTable(t *testing.T) {
	svc, _, _ := newTestService(t, WithTable(nil))

	if defs := svc.Weathers(); len(defs) != 0 {
		t.Fatalf("Weathers() = %v", defs)
	}
}
