package session

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestClearAccountKeepsLastError(t *testing.T) {
	address, balance, networkID := "0xABC", "1.0", "1"
	snapshot := &Snapshot{
		Address:   &address,
		Balance:   &balance,
		NetworkID: &networkID,
		Connected: true,
		LastError: &ConnectError{Kind: KindRequestFailed, Message: "boom"},
	}
	snapshot.ClearAccount()
	if snapshot.Address != nil || snapshot.Balance != nil || snapshot.NetworkID != nil || snapshot.Connected {
		t.Fatalf("TestClearAccountKeepsLastError: account not cleared: %s", spew.Sdump(snapshot))
	}
	if snapshot.LastError == nil || snapshot.LastError.Message != "boom" {
		t.Fatalf("TestClearAccountKeepsLastError: LastError was touched: %s", spew.Sdump(snapshot))
	}
}

func TestSelectAccountKeepsBalanceAndNetwork(t *testing.T) {
	balance, networkID := "2.5", "5"
	snapshot := &Snapshot{Balance: &balance, NetworkID: &networkID}
	snapshot.SelectAccount("0xDEF")
	if !snapshot.Connected || snapshot.Address == nil || *snapshot.Address != "0xDEF" {
		t.Fatalf("TestSelectAccountKeepsBalanceAndNetwork: account not selected: %s", spew.Sdump(snapshot))
	}
	if *snapshot.Balance != "2.5" || *snapshot.NetworkID != "5" {
		t.Fatalf("TestSelectAccountKeepsBalanceAndNetwork: balance or network changed: %s", spew.Sdump(snapshot))
	}
}

func TestStateSnapshotIsACopy(t *testing.T) {
	state := NewState()
	state.Update(func(snapshot *Snapshot) {
		snapshot.SelectAccount("0xABC")
		snapshot.LastError = &ConnectError{Kind: KindUserRejected, Message: "rejected"}
	})

	copied := state.Snapshot()
	*copied.Address = "0x000"
	copied.LastError.Message = "changed"
	copied.Connected = false

	current := state.Snapshot()
	if *current.Address != "0xABC" || !current.Connected || current.LastError.Message != "rejected" {
		t.Fatalf("TestStateSnapshotIsACopy: mutating a snapshot changed the state: %s", spew.Sdump(current))
	}
}

func TestSnapshotString(t *testing.T) {
	address := "0xABC"
	snapshot := &Snapshot{
		Address:   &address,
		Connected: true,
		LastError: &ConnectError{Kind: KindRequestFailed, Message: "no balance"},
	}
	expected := `address=0xABC balance=<absent> network=<absent> connected=true connecting=false ` +
		`error=RequestFailed("no balance")`
	if snapshot.String() != expected {
		t.Fatalf("TestSnapshotString: got %s, expected %s", snapshot, expected)
	}
}
