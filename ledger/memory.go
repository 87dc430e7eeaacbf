// Package ledger provides an in-memory token ledger used to drive the issuance
// core without an external token primitive.
package ledger

import (
	"context"
	"fmt"
	"math/bits"
	"sort"
	"sync"

	"github.com/goliatone/go-issuance/core"
)

var (
	_ core.TokenLedger   = (*MemoryLedger)(nil)
	_ core.BalanceReader = (*MemoryLedger)(nil)
)

// Primitive identifies a ledger call for failure injection.
type Primitive string

const (
	PrimitiveMint     Primitive = "mint"
	PrimitiveBurn     Primitive = "burn"
	PrimitiveTransfer Primitive = "transfer"
)

// Entry is one successful ledger call.
type Entry struct {
	Primitive Primitive
	ConfigID  string
	From      core.Identity
	To        core.Identity
	Amount    uint64
}

// MemoryLedger keeps balances per issuance record and holder.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]map[core.Identity]uint64
	failOn   map[Primitive]error
	journal  []Entry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: map[string]map[core.Identity]uint64{},
		failOn:   map[Primitive]error{},
	}
}

// FailOn makes every following call of primitive return err. A nil err clears it.
func (l *MemoryLedger) FailOn(primitive Primitive, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.failOn, primitive)
		return
	}
	l.failOn[primitive] = err
}

func (l *MemoryLedger) Mint(ctx context.Context, configID string, to core.Identity, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to.IsZero() {
		return fmt.Errorf("ledger: mint recipient is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.failOn[PrimitiveMint]; err != nil {
		return err
	}
	holders := l.holders(configID)
	next, carry := bits.Add64(holders[to], amount, 0)
	if carry != 0 {
		return fmt.Errorf("ledger: balance overflow for %s", to)
	}
	holders[to] = next
	l.journal = append(l.journal, Entry{Primitive: PrimitiveMint, ConfigID: configID, To: to, Amount: amount})
	return nil
}

func (l *MemoryLedger) Burn(ctx context.Context, configID string, from core.Identity, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.failOn[PrimitiveBurn]; err != nil {
		return err
	}
	holders := l.holders(configID)
	if holders[from] < amount {
		return fmt.Errorf("ledger: insufficient balance for %s: have %d, burn %d", from, holders[from], amount)
	}
	holders[from] -= amount
	if holders[from] == 0 {
		delete(holders, from)
	}
	l.journal = append(l.journal, Entry{Primitive: PrimitiveBurn, ConfigID: configID, From: from, Amount: amount})
	return nil
}

func (l *MemoryLedger) Transfer(ctx context.Context, configID string, from, to core.Identity, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to.IsZero() {
		return fmt.Errorf("ledger: transfer recipient is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.failOn[PrimitiveTransfer]; err != nil {
		return err
	}
	holders := l.holders(configID)
	if holders[from] < amount {
		return fmt.Errorf("ledger: insufficient balance for %s: have %d, transfer %d", from, holders[from], amount)
	}
	if from == to {
		l.journal = append(l.journal, Entry{Primitive: PrimitiveTransfer, ConfigID: configID, From: from, To: to, Amount: amount})
		return nil
	}
	next, carry := bits.Add64(holders[to], amount, 0)
	if carry != 0 {
		return fmt.Errorf("ledger: balance overflow for %s", to)
	}
	holders[from] -= amount
	if holders[from] == 0 {
		delete(holders, from)
	}
	holders[to] = next
	l.journal = append(l.journal, Entry{Primitive: PrimitiveTransfer, ConfigID: configID, From: from, To: to, Amount: amount})
	return nil
}

func (l *MemoryLedger) BalanceOf(ctx context.Context, configID string, holder core.Identity) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[configID][holder], nil
}

// TotalSupply sums every holder balance of one record.
func (l *MemoryLedger) TotalSupply(configID string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total uint64
	for _, balance := range l.balances[configID] {
		total += balance
	}
	return total
}

// Holders lists the identities with a non-zero balance, sorted.
func (l *MemoryLedger) Holders(configID string) []core.Identity {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Identity, 0, len(l.balances[configID]))
	for holder := range l.balances[configID] {
		out = append(out, holder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (l *MemoryLedger) Journal() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.journal...)
}

func (l *MemoryLedger) holders(configID string) map[core.Identity]uint64 {
	holders, ok := l.balances[configID]
	if !ok {
		holders = map[core.Identity]uint64{}
		l.balances[configID] = holders
	}
	return holders
}
