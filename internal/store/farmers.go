package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/i474232898/forecaster-text/internal/farmer"
)

// ErrFarmerNotFound is returned when no farmer has the requested id.
var ErrFarmerNotFound = errors.New("farmer not found")

const farmerSchema = `
CREATE TABLE IF NOT EXISTS farmers (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS farmer_mail (
	farmer_id TEXT NOT NULL REFERENCES farmers(id) ON DELETE CASCADE,
	flag      TEXT NOT NULL,
	PRIMARY KEY (farmer_id, flag)
);`

// FarmerStore persists farmers and their mail flags in SQLite.
type FarmerStore struct {
	sqlDB *sql.DB
}

// OpenFarmerStore opens (or creates) the database at path.
func OpenFarmerStore(path string) (*FarmerStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(farmerSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &FarmerStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *FarmerStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateFarmer inserts a farmer with a new id.
func (s *FarmerStore) CreateFarmer(ctx context.Context, name string) (farmer.Farmer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return farmer.Farmer{}, fmt.Errorf("farmer name is required")
	}

	f := farmer.Farmer{
		ID:        uuid.New(),
		Name:      name,
		Mail:      []string{},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO farmers (id, name, created_at) VALUES (?, ?, ?)`,
		f.ID.String(), f.Name, f.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return farmer.Farmer{}, fmt.Errorf("insert farmer: %w", err)
	}
	return f, nil
}

// GetFarmer loads a farmer and its mail flags.
func (s *FarmerStore) GetFarmer(ctx context.Context, id uuid.UUID) (farmer.Farmer, error) {
	var (
		f         farmer.Farmer
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT name, created_at FROM farmers WHERE id = ?`, id.String(),
	).Scan(&f.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return farmer.Farmer{}, ErrFarmerNotFound
	}
	if err != nil {
		return farmer.Farmer{}, fmt.Errorf("query farmer: %w", err)
	}
	f.ID = id
	f.CreatedAt = time.UnixMilli(createdAt).UTC()

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT flag FROM farmer_mail WHERE farmer_id = ? ORDER BY flag`, id.String(),
	)
	if err != nil {
		return farmer.Farmer{}, fmt.Errorf("query mail: %w", err)
	}
	defer rows.Close()

	f.Mail = []string{}
	for rows.Next() {
		var flag string
		if err := rows.Scan(&flag); err != nil {
			return farmer.Farmer{}, fmt.Errorf("scan mail: %w", err)
		}
		f.Mail = append(f.Mail, flag)
	}
	if err := rows.Err(); err != nil {
		return farmer.Farmer{}, fmt.Errorf("iterate mail: %w", err)
	}
	return f, nil
}

// AddMail records flag for the farmer. Adding a flag twice is a no-op.
func (s *FarmerStore) AddMail(ctx context.Context, id uuid.UUID, flag string) error {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return fmt.Errorf("mail flag is required")
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO farmer_mail (farmer_id, flag)
		 SELECT id, ? FROM farmers WHERE id = ?`,
		flag, id.String(),
	)
	if err != nil {
		return fmt.Errorf("insert mail: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the farmer is missing or the flag was already there.
		if _, err := s.GetFarmer(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
