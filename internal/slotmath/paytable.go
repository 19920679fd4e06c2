// Package slotmath models the numeric side of a slot game concept: the
// paytable (symbol pay multipliers per kind-count tier) and the reel strips
// (ordered symbol sequences per reel), both ingested from the CSV tables the
// math pipeline produces, plus the structural sanity checks over them.
package slotmath

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// SymbolClass tags a symbol's payout behavior. The class is decided once at
// ingestion by name heuristics so validators never re-derive it ad hoc.
type SymbolClass int

const (
	ClassStandard SymbolClass = iota
	ClassWild
	ClassScatter
)

// String returns the class label used in reports.
func (c SymbolClass) String() string {
	switch c {
	case ClassWild:
		return "wild"
	case ClassScatter:
		return "scatter"
	default:
		return "standard"
	}
}

// Classify decides a symbol's class from its name. Substring matching keeps
// it tolerant of naming like "Golden Wild" or "Bonus Scatter".
func Classify(name string) SymbolClass {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "wild"):
		return ClassWild
	case strings.Contains(lower, "scatter"), strings.Contains(lower, "bonus"):
		return ClassScatter
	default:
		return ClassStandard
	}
}

// Symbol is one paytable row: a named symbol with pay multipliers keyed by
// kind-count tier (3 for 3-of-a-kind and so on). A zero entry means the tier
// does not pay for this symbol.
type Symbol struct {
	Name  string
	Class SymbolClass
	Pays  map[int]float64
}

// MaxPay returns the highest single pay across tiers.
func (s Symbol) MaxPay() float64 {
	var top float64
	for _, pay := range s.Pays {
		if pay > top {
			top = pay
		}
	}
	return top
}

// Paytable is the ordered symbol pay model loaded from paytable.csv.
type Paytable struct {
	Symbols []Symbol
	Tiers   []int // ascending kind-count tiers found in the header
}

// Lookup returns the symbol with the given name, case-insensitively.
func (p *Paytable) Lookup(name string) (Symbol, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, symbol := range p.Symbols {
		if strings.ToLower(symbol.Name) == lower {
			return symbol, true
		}
	}
	return Symbol{}, false
}

// ReelStrip is the ordered symbol sequence populating one reel.
type ReelStrip struct {
	Name    string
	Symbols []string
}

// ParsePaytable reads a paytable CSV: one symbol column plus one column per
// kind-count tier. Header names are matched loosely ("3OAK", "3x", "x3",
// "3 of a kind", or a bare "3") since upstream generators vary.
func ParsePaytable(r io.Reader) (*Paytable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("slotmath: parse paytable csv: %w", err)
	}
	if len(records) == 0 {
		return &Paytable{}, nil
	}

	header := records[0]
	symbolCol := 0
	tierCols := map[int]int{} // kind count -> column index
	for i, field := range header {
		lower := strings.ToLower(strings.TrimSpace(field))
		if lower == "symbol" || lower == "name" || lower == "sym" {
			symbolCol = i
			continue
		}
		if tier, ok := tierFromHeader(lower); ok {
			tierCols[tier] = i
		}
	}

	table := &Paytable{}
	for tier := range tierCols {
		table.Tiers = append(table.Tiers, tier)
	}
	sort.Ints(table.Tiers)

	for _, row := range records[1:] {
		if symbolCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[symbolCol])
		if name == "" {
			continue
		}
		symbol := Symbol{Name: name, Class: Classify(name), Pays: map[int]float64{}}
		for tier, col := range tierCols {
			if col >= len(row) {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				continue // non-numeric cells count as "tier not applicable"
			}
			symbol.Pays[tier] = value
		}
		table.Symbols = append(table.Symbols, symbol)
	}
	return table, nil
}

func tierFromHeader(lower string) (int, bool) {
	for _, tier := range []int{3, 4, 5, 6} {
		n := strconv.Itoa(tier)
		if strings.Contains(lower, n+"oak") ||
			strings.Contains(lower, n+"x") ||
			strings.Contains(lower, n+" of") ||
			strings.Contains(lower, "x"+n) ||
			lower == n {
			return tier, true
		}
	}
	return 0, false
}

// ParseReelStrips reads a reel strip CSV: a header of reel names and one row
// per stop position, columns holding symbol names. Ragged rows are fine;
// shorter reels simply end early.
func ParseReelStrips(r io.Reader) ([]ReelStrip, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("slotmath: parse reel csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	strips := make([]ReelStrip, len(header))
	for i, name := range header {
		strips[i].Name = strings.TrimSpace(name)
	}
	for _, row := range records[1:] {
		for col := range strips {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			lower := strings.ToLower(cell)
			if lower == "position" || lower == "pos" || lower == "stop" {
				continue
			}
			strips[col].Symbols = append(strips[col].Symbols, cell)
		}
	}
	return strips, nil
}
