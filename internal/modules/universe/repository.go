package universe

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/database"
	"github.com/aristath/divscout/internal/utils"
)

// Repository handles sector database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new sector repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "universe").Logger(),
	}
}

// GetSectors returns every sector in name order with its symbols in stored order.
func (r *Repository) GetSectors() ([]Sector, error) {
	rows, err := r.db.Query(`
		SELECT s.name, s.updated_at, ss.symbol
		FROM sectors s
		LEFT JOIN sector_symbols ss ON ss.sector = s.name
		ORDER BY s.name, ss.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	sectors := []Sector{}
	for rows.Next() {
		var (
			name      string
			updatedAt int64
			symbol    sql.NullString
		)
		if err := rows.Scan(&name, &updatedAt, &symbol); err != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", err)
		}

		if len(sectors) == 0 || sectors[len(sectors)-1].Name != name {
			sectors = append(sectors, Sector{
				Name:      name,
				Symbols:   []string{},
				UpdatedAt: time.Unix(updatedAt, 0).UTC(),
			})
		}
		if symbol.Valid {
			last := &sectors[len(sectors)-1]
			last.Symbols = append(last.Symbols, symbol.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sectors: %w", err)
	}

	return sectors, nil
}

// GetSector returns one sector, or nil when it does not exist.
func (r *Repository) GetSector(name string) (*Sector, error) {
	sectors, err := r.GetSectors()
	if err != nil {
		return nil, err
	}
	for i := range sectors {
		if sectors[i].Name == name {
			return &sectors[i], nil
		}
	}
	return nil, nil
}

// SectorMap returns the universe as sector -> symbols.
func (r *Repository) SectorMap() (map[string][]string, error) {
	sectors, err := r.GetSectors()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(sectors))
	for _, s := range sectors {
		out[s.Name] = s.Symbols
	}
	return out, nil
}

// ReplaceSector creates the sector or replaces its symbol list. Symbols are
// upper-cased and de-duplicated; order is kept.
func (r *Repository) ReplaceSector(name string, symbols []string) (*Sector, error) {
	name = strings.TrimSpace(name)
	symbols = utils.NormalizeSymbols(symbols)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSector)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: at least one symbol is required", ErrInvalidSector)
	}
	for _, s := range symbols {
		if !utils.ValidSymbol(s) {
			return nil, fmt.Errorf("%w: bad symbol %q", ErrInvalidSector, s)
		}
	}

	now := time.Now().UTC()
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO sectors (name, created_at, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
			name, now.Unix(), now.Unix()); err != nil {
			return fmt.Errorf("failed to upsert sector: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM sector_symbols WHERE sector = ?`, name); err != nil {
			return fmt.Errorf("failed to clear sector symbols: %w", err)
		}
		for i, symbol := range symbols {
			if _, err := tx.Exec(
				`INSERT INTO sector_symbols (sector, symbol, position) VALUES (?, ?, ?)`,
				name, symbol, i); err != nil {
				return fmt.Errorf("failed to insert symbol %s: %w", symbol, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().Str("sector", name).Int("symbols", len(symbols)).Msg("Sector saved")
	return &Sector{Name: name, Symbols: symbols, UpdatedAt: time.Unix(now.Unix(), 0).UTC()}, nil
}

// DeleteSector removes a sector. Returns false when it did not exist.
func (r *Repository) DeleteSector(name string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM sectors WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete sector: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// SeedDefaults fills an empty universe with DefaultSectors and returns how
// many sectors were written.
func (r *Repository) SeedDefaults() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sectors`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sectors: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	names := make([]string, 0, len(DefaultSectors))
	for name := range DefaultSectors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := r.ReplaceSector(name, DefaultSectors[name]); err != nil {
			return 0, err
		}
	}

	r.log.Info().Int("sectors", len(names)).Msg("Seeded default sector universe")
	return len(names), nil
}
