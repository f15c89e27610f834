package trading

import (
	"errors"
	"sync"

	"memetrader/src/model"
)

var (
	// ErrDuplicatePosition rejects a second live position for an address.
	ErrDuplicatePosition = errors.New("live position already exists for address")
	// ErrPositionCap rejects an open beyond the system-wide cap.
	ErrPositionCap = errors.New("maximum open positions reached")
	// ErrEntryLeased means another goroutine holds the exit lease.
	ErrEntryLeased = errors.New("position is leased")
)

type ledgerEntry struct {
	position *model.Position
	reserved bool // slot claimed, buy still in flight
	leased   bool // exclusive exit lease held
}

// Ledger owns the authoritative in-memory map of live positions. All checks
// and mutations happen inside a single critical section per call; the
// persistence layer is a write-through mirror, never consulted mid-session.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*ledgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]*ledgerEntry)}
}

// Reserve atomically claims the slot for an address before the buy is sent:
// the cap check and the duplicate check are one critical section with the
// insert, so two concurrent buys cannot both pass.
func (l *Ledger) Reserve(address string, maxPositions int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.entries[address]; exists {
		return ErrDuplicatePosition
	}
	if len(l.entries) >= maxPositions {
		return ErrPositionCap
	}

	l.entries[address] = &ledgerEntry{reserved: true}
	return nil
}

// Commit fills a reserved slot with the position created by a confirmed buy.
// The ledger keeps its own copy, so the caller's pointer never aliases the
// live entry.
func (l *Ledger) Commit(position *model.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := *position
	l.entries[copied.Address] = &ledgerEntry{position: &copied}
}

// Release frees a reserved slot after a failed buy; the address becomes
// eligible for a future signal.
func (l *Ledger) Release(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.entries[address]; ok && entry.reserved {
		delete(l.entries, address)
	}
}

// Lease takes the exclusive exit lease on a live position. While leased, the
// holder is the only goroutine allowed to read or mutate the entry; Snapshot
// hides the entry until the lease is returned.
func (l *Ledger) Lease(address string) (*model.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[address]
	if !ok || entry.reserved {
		return nil, errors.New("no live position for address")
	}
	if entry.leased {
		return nil, ErrEntryLeased
	}

	entry.leased = true
	return entry.position, nil
}

// Unlease returns the lease. When the position reached CLOSED while leased,
// the entry is dropped from the live map.
func (l *Ledger) Unlease(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[address]
	if !ok {
		return
	}
	entry.leased = false

	if entry.position != nil && entry.position.Status == model.PositionStatusClosed {
		delete(l.entries, address)
	}
}

// Restore loads a recovered position without cap checks, used at startup.
func (l *Ledger) Restore(position *model.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := *position
	l.entries[copied.Address] = &ledgerEntry{position: &copied}
}

// Count returns the number of claimed slots, reservations included.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Addresses lists live (non-reserved) position addresses for a monitor pass.
func (l *Ledger) Addresses() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	addresses := make([]string, 0, len(l.entries))
	for address, entry := range l.entries {
		if !entry.reserved {
			addresses = append(addresses, address)
		}
	}
	return addresses
}

// Snapshot copies the live positions for status and API reads. Leased entries
// are skipped, their holder may be mid-exit; they reappear on unlease.
func (l *Ledger) Snapshot() []model.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions := make([]model.Position, 0, len(l.entries))
	for _, entry := range l.entries {
		if entry.reserved || entry.leased || entry.position == nil {
			continue
		}
		positions = append(positions, *entry.position)
	}
	return positions
}
