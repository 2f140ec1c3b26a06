package payout

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEvaluate_ThreeOfAKind tests the full-spin combinations
func TestEvaluate_ThreeOfAKind(t *testing.T) {
	engine := NewEngine(DefaultTable())

	assert.True(t, decimal.NewFromInt(5).Equal(engine.Evaluate([]Symbol{"💎", "💎", "💎"})))
	assert.True(t, decimal.NewFromInt(3).Equal(engine.Evaluate([]Symbol{"💰", "💰", "💰"})))
	assert.True(t, decimal.NewFromInt(2).Equal(engine.Evaluate([]Symbol{"⛏️", "⛏️", "⛏️"})))
}

// TestEvaluate_TwoOfAKind tests pair payouts and the exactness of the
// fractional multipliers
func TestEvaluate_TwoOfAKind(t *testing.T) {
	engine := NewEngine(DefaultTable())

	assert.True(t, decimal.NewFromInt(2).Equal(engine.Evaluate([]Symbol{"💎", "💎", "💰"})))
	assert.True(t, decimal.RequireFromString("1.5").Equal(engine.Evaluate([]Symbol{"💰", "⛏️", "💰"})))
	assert.True(t, decimal.RequireFromString("1.2").Equal(engine.Evaluate([]Symbol{"⛏️", "💎", "⛏️"})))

	// The pair multipliers must survive as exact decimals, not floats
	assert.Equal(t, "1.5", engine.Evaluate([]Symbol{"💰", "💰", "💎"}).String())
	assert.Equal(t, "1.2", engine.Evaluate([]Symbol{"⛏️", "⛏️", "💰"}).String())
}

// TestEvaluate_AlphabetOrderBreaksTies tests that when a spin holds two
// pairs worth of symbols the earlier symbol in the alphabet wins
func TestEvaluate_AlphabetOrderBreaksTies(t *testing.T) {
	table := Table{
		Symbols: []Symbol{"💎", "💰", "⛏️"},
		Multipliers: map[string]decimal.Decimal{
			"💎💎": decimal.NewFromInt(2),
			"💰💰": decimal.RequireFromString("1.5"),
		},
	}
	engine := NewEngine(table)

	// 💎 comes before 💰 in the alphabet, so its pair multiplier applies
	assert.True(t, decimal.NewFromInt(2).Equal(engine.Evaluate([]Symbol{"💎", "💎", "💰"})))
}

// TestEvaluate_NoWin tests that a spin with no recognized combination pays
// nothing
func TestEvaluate_NoWin(t *testing.T) {
	engine := NewEngine(DefaultTable())

	assert.True(t, engine.Evaluate([]Symbol{"💎", "💰", "⛏️"}).IsZero())
}

// TestEvaluate_FullSpinBeatsPair tests that an exact three-symbol match has
// priority over any pair in the same spin
func TestEvaluate_FullSpinBeatsPair(t *testing.T) {
	table := DefaultTable()
	// Give the mixed spin its own entry so both rules could fire
	table.Multipliers["💎💎💰"] = decimal.NewFromInt(10)
	engine := NewEngine(table)

	assert.True(t, decimal.NewFromInt(10).Equal(engine.Evaluate([]Symbol{"💎", "💎", "💰"})))
}

func TestWinAmount(t *testing.T) {
	assert.Equal(t, int64(500), WinAmount(100, decimal.NewFromInt(5)))
	assert.Equal(t, int64(150), WinAmount(100, decimal.RequireFromString("1.5")))
	// Truncated toward zero, never rounded up
	assert.Equal(t, int64(1), WinAmount(1, decimal.RequireFromString("1.2")))
	assert.Equal(t, int64(0), WinAmount(100, decimal.Zero))
}

// TestSpin tests that a spin always draws from the table's alphabet
func TestSpin(t *testing.T) {
	engine := NewEngine(DefaultTable())
	r := rand.New(rand.NewSource(1))

	alphabet := map[Symbol]bool{"💎": true, "💰": true, "⛏️": true}
	for i := 0; i < 100; i++ {
		spin := engine.Spin(r)
		require.Len(t, spin, SpinLength)
		for _, s := range spin {
			assert.True(t, alphabet[s], "symbol %q not in alphabet", s)
		}
	}
}

// TestLoadTable tests loading an adjusted paytable from YAML
func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paytable.yaml")
	yaml := `symbols: ["A", "B", "C"]
multipliers:
  "AAA": "5"
  "BBB": "3"
  "CCC": "2"
  "AA": "2"
  "BB": "1.5"
  "CC": "1.2"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)

	engine := NewEngine(table)
	assert.True(t, decimal.NewFromInt(5).Equal(engine.Evaluate([]Symbol{"A", "A", "A"})))
	assert.True(t, decimal.NewFromInt(2).Equal(engine.Evaluate([]Symbol{"A", "A", "B"})))
	assert.Equal(t, "1.5", engine.Evaluate([]Symbol{"B", "B", "A"}).String())
	assert.True(t, engine.Evaluate([]Symbol{"A", "B", "C"}).IsZero())
}

func TestLoadTable_Invalid(t *testing.T) {
	dir := t.TempDir()

	noSymbols := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(noSymbols, []byte(`multipliers: {"AA": "2"}`), 0o600))
	_, err := LoadTable(noSymbols)
	assert.Error(t, err)

	badMultiplier := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badMultiplier, []byte("symbols: [\"A\"]\nmultipliers: {\"AA\": \"lots\"}\n"), 0o600))
	_, err = LoadTable(badMultiplier)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.yaml")
	require.NoError(t, os.WriteFile(negative, []byte("symbols: [\"A\"]\nmultipliers: {\"AA\": \"-1\"}\n"), 0o600))
	_, err = LoadTable(negative)
	assert.Error(t, err)

	_, err = LoadTable(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
