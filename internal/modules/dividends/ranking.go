package dividends

import (
	"sort"
)

// YieldLookup resolves a symbol to its yield record. The bool is false when
// the provider has no usable dividend or yield data for it.
type YieldLookup func(symbol string) (YieldRecord, bool)

// Rank returns a copy of records sorted by descending yield. Records with equal
// yield keep their input order.
func Rank(records []YieldRecord) []YieldRecord {
	ranked := make([]YieldRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].YieldPercent > ranked[j].YieldPercent
	})

	return ranked
}

// RankBySector ranks the stocks of every sector by yield. Stocks the lookup
// cannot resolve are left out; a sector left with nothing maps to an empty
// slice rather than disappearing.
func RankBySector(sectors map[string][]string, lookup YieldLookup) SectorRanking {
	ranking := make(SectorRanking, len(sectors))

	for sector, symbols := range sectors {
		records := make([]YieldRecord, 0, len(symbols))
		for _, symbol := range symbols {
			if record, ok := lookup(symbol); ok {
				records = append(records, record)
			}
		}
		ranking[sector] = Rank(records)
	}

	return ranking
}

// MapLookup adapts a prefetched symbol -> record map into a YieldLookup.
func MapLookup(records map[string]YieldRecord) YieldLookup {
	return func(symbol string) (YieldRecord, bool) {
		record, ok := records[symbol]
		return record, ok
	}
}
