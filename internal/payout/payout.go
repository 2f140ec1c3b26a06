// Package payout computes win multipliers for slot spins. The engine is a
// pure function over a paytable; randomness and bet accounting live with the
// callers.
package payout

import (
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is one reel icon.
type Symbol string

// SpinLength is the number of reels in a spin.
const SpinLength = 3

// Engine evaluates spins against a fixed paytable.
type Engine struct {
	table Table
}

func NewEngine(table Table) *Engine {
	return &Engine{table: table}
}

// Evaluate returns the win multiplier for a spin, or zero when nothing
// matched. An exact full-spin combination beats any two-of-a-kind; among
// two-of-a-kind matches the first symbol in alphabet order wins.
func (e *Engine) Evaluate(spin []Symbol) decimal.Decimal {
	if m, ok := e.table.Multipliers[combinationKey(spin)]; ok {
		return m
	}

	for _, symbol := range e.table.Symbols {
		if countSymbol(spin, symbol) < 2 {
			continue
		}
		pair := string(symbol) + string(symbol)
		if m, ok := e.table.Multipliers[pair]; ok {
			return m
		}
	}

	return decimal.Zero
}

// Spin draws SpinLength symbols uniformly from the alphabet. Provided for
// callers that want a server-side spin instead of trusting the client's.
func (e *Engine) Spin(r *rand.Rand) []Symbol {
	spin := make([]Symbol, SpinLength)
	for i := range spin {
		spin[i] = e.table.Symbols[r.Intn(len(e.table.Symbols))]
	}
	return spin
}

// WinAmount converts a bet and multiplier into a coin amount, truncated
// toward zero so fractional multipliers never fabricate a fraction of a
// coin.
func WinAmount(bet int64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(bet).Mul(multiplier).IntPart()
}

func combinationKey(spin []Symbol) string {
	var b strings.Builder
	for _, s := range spin {
		b.WriteString(string(s))
	}
	return b.String()
}

func countSymbol(spin []Symbol, symbol Symbol) int {
	count := 0
	for _, s := range spin {
		if s == symbol {
			count++
		}
	}
	return count
}
