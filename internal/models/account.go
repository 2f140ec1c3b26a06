package models

// DefaultBalance is the starting balance credited to an account the first
// time a user is seen.
const DefaultBalance int64 = 10000

// Item is a single inventory entry. Items are opaque to the ledger: the web
// app decides what they mean, the ledger only stores them.
type Item struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Account is the persisted per-user record: balance in coins plus the
// user's inventory. The inventory is replaced wholesale on update, never
// diffed.
type Account struct {
	Balance   int64  `json:"balance"`
	Inventory []Item `json:"inventory"`
}

// NewAccount returns an account with the given balance and an empty
// inventory.
func NewAccount(balance int64) *Account {
	return &Account{Balance: balance, Inventory: []Item{}}
}

// Clone returns a deep copy so callers cannot mutate stored state through a
// returned pointer.
func (a *Account) Clone() *Account {
	items := make([]Item, len(a.Inventory))
	copy(items, a.Inventory)
	return &Account{Balance: a.Balance, Inventory: items}
}
