package payout

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Table is the paytable: the reel alphabet in tie-break order plus the
// recognized winning combinations and their multipliers. It is data, not
// logic, and can be replaced from a YAML file without touching the engine.
type Table struct {
	Symbols     []Symbol
	Multipliers map[string]decimal.Decimal
}

// DefaultTable returns the built-in paytable: three diamonds pay 5x, money
// bags 3x, pickaxes 2x, with smaller pairs behind each.
func DefaultTable() Table {
	return Table{
		Symbols: []Symbol{"💎", "💰", "⛏️"},
		Multipliers: map[string]decimal.Decimal{
			"💎💎💎":    decimal.NewFromInt(5),
			"💰💰💰":    decimal.NewFromInt(3),
			"⛏️⛏️⛏️": decimal.NewFromInt(2),
			"💎💎":      decimal.NewFromInt(2),
			"💰💰":      decimal.RequireFromString("1.5"),
			"⛏️⛏️":    decimal.RequireFromString("1.2"),
		},
	}
}

// tableFile is the on-disk YAML shape. Multipliers are strings so values
// like 1.5 stay exact instead of passing through a float.
type tableFile struct {
	Symbols     []string          `yaml:"symbols"`
	Multipliers map[string]string `yaml:"multipliers"`
}

// LoadTable reads a paytable from a YAML file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read paytable: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Table{}, fmt.Errorf("failed to parse paytable: %w", err)
	}

	if len(file.Symbols) == 0 {
		return Table{}, fmt.Errorf("paytable %s declares no symbols", path)
	}

	table := Table{
		Symbols:     make([]Symbol, 0, len(file.Symbols)),
		Multipliers: make(map[string]decimal.Decimal, len(file.Multipliers)),
	}
	for _, s := range file.Symbols {
		table.Symbols = append(table.Symbols, Symbol(s))
	}
	for combo, raw := range file.Multipliers {
		m, err := decimal.NewFromString(raw)
		if err != nil {
			return Table{}, fmt.Errorf("paytable combination %q has invalid multiplier %q: %w", combo, raw, err)
		}
		if m.IsNegative() {
			return Table{}, fmt.Errorf("paytable combination %q has negative multiplier %s", combo, m)
		}
		table.Multipliers[combo] = m
	}
	return table, nil
}
