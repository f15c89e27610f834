package trading

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"memetrader/src/model"
)

func livePosition(address string) *model.Position {
	return &model.Position{
		Address:    address,
		Symbol:     "MEME",
		EntryPrice: 1.0,
		TokensHeld: 1000,
		Status:     model.PositionStatusOpen,
	}
}

func TestLedgerReserveEnforcesCap(t *testing.T) {
	ledger := NewLedger()

	for i := 0; i < 5; i++ {
		if err := ledger.Reserve(fmt.Sprintf("addr-%d", i), 5); err != nil {
			t.Fatalf("reserve %d: unexpected error %v", i, err)
		}
	}

	if err := ledger.Reserve("addr-over", 5); !errors.Is(err, ErrPositionCap) {
		t.Fatalf("expected ErrPositionCap, got %v", err)
	}
}

func TestLedgerReserveRejectsDuplicate(t *testing.T) {
	ledger := NewLedger()

	if err := ledger.Reserve("addr-1", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ledger.Reserve("addr-1", 5); !errors.Is(err, ErrDuplicatePosition) {
		t.Fatalf("expected ErrDuplicatePosition for reserved slot, got %v", err)
	}

	ledger.Commit(livePosition("addr-1"))
	if err := ledger.Reserve("addr-1", 5); !errors.Is(err, ErrDuplicatePosition) {
		t.Fatalf("expected ErrDuplicatePosition for committed slot, got %v", err)
	}
}

func TestLedgerReleaseFreesReservedSlotOnly(t *testing.T) {
	ledger := NewLedger()

	_ = ledger.Reserve("addr-1", 5)
	ledger.Release("addr-1")
	if err := ledger.Reserve("addr-1", 5); err != nil {
		t.Fatalf("released slot should be reusable: %v", err)
	}

	ledger.Commit(livePosition("addr-1"))
	ledger.Release("addr-1")
	if ledger.Count() != 1 {
		t.Fatal("release must not drop a committed position")
	}
}

func TestLedgerConcurrentReserveHoldsInvariants(t *testing.T) {
	ledger := NewLedger()
	const workers = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	duplicates := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Half the workers race on the same address.
			address := fmt.Sprintf("addr-%d", i%25)
			err := ledger.Reserve(address, 10)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, ErrDuplicatePosition):
				duplicates++
			}
		}(i)
	}
	wg.Wait()

	if admitted > 10 {
		t.Fatalf("cap of 10 violated, %d reservations succeeded", admitted)
	}
	if admitted+duplicates > workers {
		t.Fatalf("accounting broken: admitted=%d duplicates=%d", admitted, duplicates)
	}
	if ledger.Count() != admitted {
		t.Fatalf("ledger count %d != admitted %d", ledger.Count(), admitted)
	}
}

func TestLedgerLeaseIsExclusive(t *testing.T) {
	ledger := NewLedger()
	ledger.Commit(livePosition("addr-1"))

	position, err := ledger.Lease("addr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if position == nil {
		t.Fatal("lease should return the position")
	}

	if _, err := ledger.Lease("addr-1"); !errors.Is(err, ErrEntryLeased) {
		t.Fatalf("expected ErrEntryLeased, got %v", err)
	}

	ledger.Unlease("addr-1")
	if _, err := ledger.Lease("addr-1"); err != nil {
		t.Fatalf("lease should be available after unlease: %v", err)
	}
}

func TestLedgerLeaseSkipsReservedSlots(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Reserve("addr-1", 5)

	if _, err := ledger.Lease("addr-1"); err == nil {
		t.Fatal("reserved slot must not be leasable")
	}
	if addresses := ledger.Addresses(); len(addresses) != 0 {
		t.Fatalf("reserved slots must not be listed, got %v", addresses)
	}
}

func TestLedgerUnleaseDropsClosedPosition(t *testing.T) {
	ledger := NewLedger()
	ledger.Commit(livePosition("addr-1"))

	position, _ := ledger.Lease("addr-1")
	position.Status = model.PositionStatusClosed
	ledger.Unlease("addr-1")

	if ledger.Count() != 0 {
		t.Fatal("closed position should leave the ledger on unlease")
	}
	if err := ledger.Reserve("addr-1", 5); err != nil {
		t.Fatalf("address should be reusable after close: %v", err)
	}
}

func TestLedgerSnapshotSkipsLeasedEntries(t *testing.T) {
	ledger := NewLedger()
	ledger.Commit(livePosition("addr-1"))
	ledger.Commit(livePosition("addr-2"))

	if _, err := ledger.Lease("addr-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot := ledger.Snapshot()
	if len(snapshot) != 1 || snapshot[0].Address != "addr-2" {
		t.Fatalf("leased entry must be hidden from snapshots, got %+v", snapshot)
	}

	ledger.Unlease("addr-1")
	if len(ledger.Snapshot()) != 2 {
		t.Fatal("entry should reappear after unlease")
	}
}

func TestLedgerSnapshotSafeDuringExitMutation(t *testing.T) {
	ledger := NewLedger()
	ledger.Commit(livePosition("addr-1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			position, err := ledger.Lease("addr-1")
			if err != nil {
				continue
			}
			// The lease holder keeps the pair in lockstep; a snapshot that
			// observes them diverged read a half-finished mutation.
			position.CurrentPrice = float64(i)
			position.PnlPercent = float64(i)
			ledger.Unlease("addr-1")
		}
	}()

	for i := 0; i < 500; i++ {
		for _, position := range ledger.Snapshot() {
			if position.CurrentPrice != position.PnlPercent {
				t.Fatalf("torn read: price=%f pnl=%f", position.CurrentPrice, position.PnlPercent)
			}
		}
	}
	<-done
}

func TestLedgerCommitDoesNotAliasCaller(t *testing.T) {
	ledger := NewLedger()
	position := livePosition("addr-1")
	ledger.Commit(position)

	position.TokensHeld = 0
	if snapshot := ledger.Snapshot(); snapshot[0].TokensHeld != 1000 {
		t.Fatal("commit must copy, caller mutations must not reach the ledger")
	}
}

func TestLedgerSnapshotCopies(t *testing.T) {
	ledger := NewLedger()
	ledger.Commit(livePosition("addr-1"))

	snapshot := ledger.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 position, got %d", len(snapshot))
	}

	snapshot[0].TokensHeld = 0
	fresh := ledger.Snapshot()
	if fresh[0].TokensHeld != 1000 {
		t.Fatal("snapshot must not alias the ledger entry")
	}
}

func TestLedgerRestoreBypassesCap(t *testing.T) {
	ledger := NewLedger()
	for i := 0; i < 7; i++ {
		ledger.Restore(livePosition(fmt.Sprintf("addr-%d", i)))
	}
	if ledger.Count() != 7 {
		t.Fatalf("restore should load all recovered positions, got %d", ledger.Count())
	}
}
