package permission

import (
	"sync"

	"syspilot/pkg/sdk"
)

// Gate holds the latest server-declared permission set and answers every
// enablement question the UI asks. The set is replaced wholesale on each
// update; merging field-by-field could race with a concurrent demotion.
type Gate struct {
	mu     sync.RWMutex
	set    sdk.PermissionSet
	osType string
}

func NewGate() *Gate {
	return &Gate{set: sdk.PermissionSet{}}
}

// Update installs a fresh copy of the set. Readers holding an earlier
// snapshot keep a consistent (if stale) view; no reader ever observes a
// half-updated map.
func (g *Gate) Update(set sdk.PermissionSet) {
	fresh := set.Clone()
	g.mu.Lock()
	g.set = fresh
	g.mu.Unlock()
}

// UpdatePlatform records the backend's reported OS, used by composite gates.
func (g *Gate) UpdatePlatform(osType string) {
	g.mu.Lock()
	g.osType = osType
	g.mu.Unlock()
}

// Clear resets to a deny-everything state, used on logout.
func (g *Gate) Clear() {
	g.mu.Lock()
	g.set = sdk.PermissionSet{}
	g.osType = ""
	g.mu.Unlock()
}

// Has reports whether the key is currently granted. Unknown keys are denied.
func (g *Gate) Has(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.set[key]
}

// Snapshot returns the current set. The returned map is never mutated after
// installation, so callers may read it without further locking.
func (g *Gate) Snapshot() sdk.PermissionSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.set
}

func (g *Gate) OSType() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.osType
}

// UserAdminVisible reports whether the user management panel may render at
// all. Admin panels are hidden outright, not disabled: their content is
// itself sensitive.
func (g *Gate) UserAdminVisible() bool {
	return g.Has(sdk.PermManageUsers)
}

// CommandPanelVisible is a composite gate: the backend only supports command
// customization on Linux, so the permission alone is not enough.
func (g *Gate) CommandPanelVisible() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.osType == "Linux" && g.set[sdk.PermModifyCommands]
}
