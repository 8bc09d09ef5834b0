package permission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"syspilot/pkg/sdk"
)

func TestHasFailsClosed(t *testing.T) {
	gate := NewGate()
	require.False(t, gate.Has(sdk.PermShutdown))
	require.False(t, gate.Has("not_a_real_key"))

	gate.Update(sdk.PermissionSet{sdk.PermShutdown: true})
	require.True(t, gate.Has(sdk.PermShutdown))
	require.False(t, gate.Has(sdk.PermRestart))
	require.False(t, gate.Has("not_a_real_key"))
}

func TestUpdateReplacesWholesale(t *testing.T) {
	gate := NewGate()
	gate.Update(sdk.PermissionSet{sdk.PermShutdown: true, sdk.PermRestart: true})
	gate.Update(sdk.PermissionSet{sdk.PermVolume: true})

	require.False(t, gate.Has(sdk.PermShutdown), "stale grant must not survive a replace")
	require.False(t, gate.Has(sdk.PermRestart))
	require.True(t, gate.Has(sdk.PermVolume))
}

func TestUpdateDoesNotAliasCallerMap(t *testing.T) {
	gate := NewGate()
	set := sdk.PermissionSet{sdk.PermShutdown: true}
	gate.Update(set)
	set[sdk.PermShutdown] = false
	require.True(t, gate.Has(sdk.PermShutdown))
}

func TestSnapshotIsAtomic(t *testing.T) {
	gate := NewGate()
	allTrue := sdk.PermissionSet{}
	allFalse := sdk.PermissionSet{}
	for _, key := range sdk.PermissionKeys {
		allTrue[key] = true
		allFalse[key] = false
	}
	gate.Update(allTrue)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	mixed := make(chan sdk.PermissionSet, 1)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := gate.Snapshot()
				first, sawFirst := false, false
				for _, key := range sdk.PermissionKeys {
					v := snap[key]
					if !sawFirst {
						first, sawFirst = v, true
						continue
					}
					if v != first {
						select {
						case mixed <- snap:
						default:
						}
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			gate.Update(allFalse)
		} else {
			gate.Update(allTrue)
		}
	}
	close(stop)
	wg.Wait()

	select {
	case snap := <-mixed:
		t.Fatalf("observed a mixed permission set: %v", snap)
	default:
	}
}

func TestCompositeVisibility(t *testing.T) {
	gate := NewGate()

	gate.Update(sdk.PermissionSet{sdk.PermModifyCommands: true, sdk.PermManageUsers: true})
	require.True(t, gate.UserAdminVisible())
	require.False(t, gate.CommandPanelVisible(), "command panel needs the Linux platform too")

	gate.UpdatePlatform("Linux")
	require.True(t, gate.CommandPanelVisible())

	gate.UpdatePlatform("Windows")
	require.False(t, gate.CommandPanelVisible())

	gate.UpdatePlatform("Linux")
	gate.Update(sdk.PermissionSet{sdk.PermManageUsers: true})
	require.False(t, gate.CommandPanelVisible(), "permission revocation closes the panel")
}

func TestClear(t *testing.T) {
	gate := NewGate()
	gate.Update(sdk.PermissionSet{sdk.PermManageUsers: true})
	gate.UpdatePlatform("Linux")
	gate.Clear()
	require.False(t, gate.UserAdminVisible())
	require.Equal(t, "", gate.OSType())
	require.Empty(t, gate.Snapshot())
}
