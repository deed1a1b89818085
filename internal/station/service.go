// Package station runs the TV weather station for a set of worlds: it keeps
// the snapshots, evaluates every forecast channel for a viewer and, on a
// replica, mirrors snapshots from the host.
package station

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/forecaster-text/internal/farmer"
	"github.com/i474232898/forecaster-text/internal/forecast"
	"github.com/i474232898/forecaster-text/internal/i18n"
	"github.com/i474232898/forecaster-text/internal/weather"
	"github.com/i474232898/forecaster-text/internal/world"
)

var (
	// ErrReadOnlyReplica is returned when a snapshot is pushed to a replica.
	ErrReadOnlyReplica = errors.New("snapshots are read-only on a replica")
	// ErrInvalidWeather is returned for malformed weather registrations.
	ErrInvalidWeather = errors.New("invalid weather definition")
	// ErrNoSource is returned when a replica has no host to sync from.
	ErrNoSource = errors.New("no snapshot source configured")
)

// SnapshotStore keeps world snapshots.
type SnapshotStore interface {
	SaveSnapshot(worldID string, snapshot world.Snapshot)
	GetLatest(worldID string) (world.Snapshot, error)
	GetRange(worldID string, from, to time.Time) ([]world.Snapshot, error)
	Worlds() []string
}

// FarmerStore keeps farmers and their mail flags.
type FarmerStore interface {
	CreateFarmer(ctx context.Context, name string) (farmer.Farmer, error)
	GetFarmer(ctx context.Context, id uuid.UUID) (farmer.Farmer, error)
	AddMail(ctx context.Context, id uuid.UUID, flag string) error
}

// SnapshotSource fetches the authoritative snapshot of a world.
type SnapshotSource interface {
	Name() string
	FetchSnapshot(ctx context.Context, worldID string) (world.Snapshot, error)
}

// Service orchestrates snapshots, farmers and forecast channels.
type Service struct {
	snapshots SnapshotStore
	farmers   FarmerStore
	source    SnapshotSource
	role      world.Role
	table     *weather.Table
	catalog   *i18n.Catalog
	calendar  *world.Calendar
	locale    string

	mu       sync.RWMutex
	settings forecast.Settings
}

// Option customises a Service.
type Option func(*Service)

// WithRole sets whether the service trusts its own snapshots or the host's.
func WithRole(role world.Role) Option {
	return func(s *Service) { s.role = role }
}

// WithSource sets where a replica syncs snapshots from.
func WithSource(source SnapshotSource) Option {
	return func(s *Service) { s.source = source }
}

// WithTable replaces the default weather table.
func WithTable(table *weather.Table) Option {
	return func(s *Service) { s.table = table }
}

// WithCatalog replaces the built-in translations.
func WithCatalog(catalog *i18n.Catalog) Option {
	return func(s *Service) { s.catalog = catalog }
}

// WithCalendar replaces the default calendar. A nil calendar disables date
// rules.
func WithCalendar(calendar *world.Calendar) Option {
	return func(s *Service) { s.calendar = calendar }
}

// WithDefaultLocale sets the locale used when a request names none.
func WithDefaultLocale(locale string) Option {
	return func(s *Service) { s.locale = strings.TrimSpace(locale) }
}

// WithSettings sets the initial display settings.
func WithSettings(settings forecast.Settings) Option {
	return func(s *Service) { s.settings = settings }
}

// NewService creates a new Service. By default it runs as host with the
// default weather table, calendar and translations, and shows every channel.
func NewService(snapshots SnapshotStore, farmers FarmerStore, opts ...Option) *Service {
	s := &Service{
		snapshots: snapshots,
		farmers:   farmers,
		role:      world.RoleHost,
		table:     weather.DefaultTable(),
		catalog:   i18n.Default(),
		calendar:  world.DefaultCalendar(),
		settings: forecast.Settings{
			PrimaryWeather:   forecast.Always,
			SecondaryWeather: forecast.Always,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Role returns the configured role.
func (s *Service) Role() world.Role {
	return s.role
}

// SaveSnapshot stores a snapshot published by the game host.
func (s *Service) SaveSnapshot(worldID string, snapshot world.Snapshot) error {
	if s.role == world.RoleReplica {
		return ErrReadOnlyReplica
	}
	s.snapshots.SaveSnapshot(worldID, snapshot)
	log.Printf("DEBUG: stored snapshot for %s (%s)", worldID, snapshot.Date)
	return nil
}

// Latest returns the newest snapshot for worldID.
func (s *Service) Latest(worldID string) (world.Snapshot, error) {
	return s.snapshots.GetLatest(worldID)
}

// Worlds lists the ids of every world with a stored snapshot, sorted.
func (s *Service) Worlds() []string {
	ids := s.snapshots.Worlds()
	sort.Strings(ids)
	return ids
}

// History returns the snapshots for worldID stored between from and to.
func (s *Service) History(worldID string, from, to time.Time) ([]world.Snapshot, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("history range: from %s is after to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return s.snapshots.GetRange(worldID, from, to)
}

// SyncWorld copies the host's latest snapshot for worldID. On failure the
// last good snapshot is kept.
func (s *Service) SyncWorld(ctx context.Context, worldID string) error {
	if s.source == nil {
		return ErrNoSource
	}

	snap, err := s.source.FetchSnapshot(ctx, worldID)
	if err != nil {
		log.Printf("ERROR: sync %s from %s failed; keeping last good snapshot: %v", worldID, s.source.Name(), err)
		return fmt.Errorf("sync %s: %w", worldID, err)
	}

	if latest, err := s.snapshots.GetLatest(worldID); err == nil && !snap.Timestamp.IsZero() && latest.Timestamp.Equal(snap.Timestamp) {
		log.Printf("DEBUG: snapshot for %s unchanged since %s", worldID, latest.Timestamp.Format(time.RFC3339))
		return nil
	}

	s.snapshots.SaveSnapshot(worldID, snap)
	log.Printf("INFO: synced %s from %s (%s)", worldID, s.source.Name(), snap.Date)
	return nil
}

// Settings returns the current display settings.
func (s *Service) Settings() forecast.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings parses and applies new display policies. Empty values keep
// the current policy. Nothing is applied when either value is invalid.
func (s *Service) UpdateSettings(primary, secondary string) (forecast.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if strings.TrimSpace(primary) != "" {
		p, err := forecast.ParseDisplayPolicy(primary)
		if err != nil {
			return s.settings, fmt.Errorf("primary weather: %w", err)
		}
		next.PrimaryWeather = p
	}
	if strings.TrimSpace(secondary) != "" {
		p, err := forecast.ParseDisplayPolicy(secondary)
		if err != nil {
			return s.settings, fmt.Errorf("secondary weather: %w", err)
		}
		next.SecondaryWeather = p
	}

	if next != s.settings {
		log.Printf("INFO: display settings changed: primary=%s secondary=%s",
			next.PrimaryWeather.Normalize(), next.SecondaryWeather.Normalize())
	}
	s.settings = next
	return next, nil
}

// CreateFarmer registers a new farmer.
func (s *Service) CreateFarmer(ctx context.Context, name string) (farmer.Farmer, error) {
	return s.farmers.CreateFarmer(ctx, name)
}

// Farmer returns the farmer with id.
func (s *Service) Farmer(ctx context.Context, id uuid.UUID) (farmer.Farmer, error) {
	return s.farmers.GetFarmer(ctx, id)
}

// AddMail records a mail flag for the farmer and returns the updated farmer.
func (s *Service) AddMail(ctx context.Context, id uuid.UUID, flag string) (farmer.Farmer, error) {
	if err := s.farmers.AddMail(ctx, id, flag); err != nil {
		return farmer.Farmer{}, err
	}
	return s.farmers.GetFarmer(ctx, id)
}
