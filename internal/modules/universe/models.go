// Package universe stores the sector -> symbols map that sector rankings run over.
package universe

import (
	"errors"
	"time"
)

// ErrInvalidSector is returned for blank sector names or empty symbol lists.
var ErrInvalidSector = errors.New("invalid sector")

// Sector is a named group of stock symbols.
type Sector struct {
	Name      string    `json:"name"`
	Symbols   []string  `json:"symbols"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSectors seeds an empty universe.
var DefaultSectors = map[string][]string{
	"Tech":           {"AAPL", "MSFT", "NVDA", "GOOGL"},
	"Finance":        {"JPM", "BAC", "WFC", "GS"},
	"Energy":         {"XOM", "CVX", "COP", "SLB"},
	"Consumer Goods": {"KO", "PEP", "PG", "MCD"},
}
