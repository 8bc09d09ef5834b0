package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"syspilot/internal/notify"
	"syspilot/internal/permission"
	"syspilot/internal/session"
	"syspilot/pkg/sdk"
)

type usersBackend struct {
	mu           sync.Mutex
	users        []sdk.User
	registerResp sdk.ActionResponse
	updateResp   sdk.ActionResponse
	deleteResp   sdk.ActionResponse
	listCalls    atomic.Int64
	mutations    atomic.Int64
	dashCalls    atomic.Int64
	lastRegister sdk.RegisterRequest
}

func newUsersBackend() *usersBackend {
	return &usersBackend{
		users: []sdk.User{
			{ID: 1, Username: "admin", Permissions: sdk.PermissionSet{sdk.PermManageUsers: true}},
		},
		registerResp: sdk.ActionResponse{Success: true, Message: "User bob registered successfully"},
		updateResp:   sdk.ActionResponse{Success: true},
		deleteResp:   sdk.ActionResponse{Success: true, Message: "User deleted successfully"},
	}
}

func (b *usersBackend) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		b.listCalls.Add(1)
		b.mu.Lock()
		users := b.users
		b.mu.Unlock()
		json.NewEncoder(w).Encode(sdk.UsersResponse{Success: true, Users: users})
	})
	mux.HandleFunc("/api/users/register", func(w http.ResponseWriter, r *http.Request) {
		b.mutations.Add(1)
		b.mu.Lock()
		json.NewDecoder(r.Body).Decode(&b.lastRegister)
		resp := b.registerResp
		b.mu.Unlock()
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/users/update_permissions/", func(w http.ResponseWriter, r *http.Request) {
		b.mutations.Add(1)
		b.mu.Lock()
		resp := b.updateResp
		b.mu.Unlock()
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/users/delete/", func(w http.ResponseWriter, r *http.Request) {
		b.mutations.Add(1)
		b.mu.Lock()
		resp := b.deleteResp
		b.mu.Unlock()
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/dashboard-data", func(w http.ResponseWriter, r *http.Request) {
		b.dashCalls.Add(1)
		json.NewEncoder(w).Encode(sdk.DashboardResponse{
			Success: true,
			Data:    sdk.DashboardData{OSType: "Linux", Permissions: sdk.PermissionSet{}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newPanel(t *testing.T, backend *usersBackend, grants sdk.PermissionSet) (*Panel, *notify.Notifier, *permission.Gate) {
	t.Helper()
	client := sdk.NewClient(backend.serve(t).URL)
	gate := permission.NewGate()
	gate.Update(grants)
	notifier := notify.New(time.Minute)
	mgr := session.NewManager(client, gate, notifier)
	return NewPanel(client, gate, notifier, mgr), notifier, gate
}

func TestListRequiresManageUsers(t *testing.T) {
	backend := newUsersBackend()
	panel, notifier, _ := newPanel(t, backend, sdk.PermissionSet{})

	_, err := panel.List()
	require.Error(t, err)
	require.Equal(t, int64(0), backend.listCalls.Load(), "hidden panel must not fetch")
	require.Equal(t, notify.Error, notifier.Current().Severity)
}

func TestListFetchesFromBackend(t *testing.T) {
	backend := newUsersBackend()
	panel, _, _ := newPanel(t, backend, sdk.PermissionSet{sdk.PermManageUsers: true})

	users, err := panel.List()
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "admin", users[0].Username)
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	backend := newUsersBackend()
	panel, _, _ := newPanel(t, backend, sdk.PermissionSet{sdk.PermManageUsers: true})

	var validationErr *ValidationError

	_, err := panel.Create("", "secret", sdk.PermissionSet{})
	require.ErrorAs(t, err, &validationErr)

	_, err = panel.Create("   ", "secret", sdk.PermissionSet{})
	require.ErrorAs(t, err, &validationErr)

	_, err = panel.Create("bob", "", sdk.PermissionSet{})
	require.ErrorAs(t, err, &validationErr)

	require.Equal(t, int64(0), backend.mutations.Load(), "validation failures issue no network call")
}

func TestCreateSendsFullPermissionSpecification(t *testing.T) {
	backend := newUsersBackend()
	panel, _, _ := newPanel(t, backend, sdk.PermissionSet{sdk.PermManageUsers: true})

	_, err := panel.Create("bob", "secret", sdk.PermissionSet{sdk.PermVolume: true})
	require.NoError(t, err)

	backend.mu.Lock()
	sent := backend.lastRegister
	backend.mu.Unlock()
	require.Equal(t, "bob", sent.Username)
	require.Len(t, sent.Permissions, len(sdk.PermissionKeys), "unchecked keys must be explicit false")
	require.True(t, sent.Permissions[sdk.PermVolume])
	require.False(t, sent.Permissions[sdk.PermShutdown])
}

func TestMutationsRefetchList(t *testing.T) {
	backend := newUsersBackend()
	panel, _, _ := newPanel(t, backend, sdk.PermissionSet{sdk.PermManageUsers: true})

	users, err := panel.Create("bob", "secret", sdk.PermissionSet{})
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Equal(t, int64(1), backend.listCalls.Load(), "create must re-fetch, not patch locally")

	_, err = panel.UpdatePermissions(1, sdk.PermissionSet{sdk.PermManageUsers: true})
	require.NoError(t, err)
	require.Equal(t, int64(2), backend.listCalls.Load())

	_, err = panel.Delete(1)
	require.NoError(t, err)
	require.Equal(t, int64(3), backend.listCalls.Load())
}

func TestMutationPermissionChangeAbortsSuccess(t *testing.T) {
	backend := newUsersBackend()
	backend.updateResp = sdk.ActionResponse{
		Success:          true,
		PermissionChange: true,
		Message:          "Your permissions were updated",
	}
	panel, notifier, gate := newPanel(t, backend, sdk.PermissionSet{sdk.PermManageUsers: true})

	_, err := panel.UpdatePermissions(1, sdk.PermissionSet{})
	require.ErrorIs(t, err, ErrPermissionChanged)

	require.Equal(t, int64(1), backend.dashCalls.Load(), "resync must re-fetch authoritative state")
	require.Equal(t, int64(0), backend.listCalls.Load(), "aborted mutation must not present a fresh list")
	require.Equal(t, notify.Info, notifier.Current().Severity)
	require.False(t, gate.Has(sdk.PermManageUsers), "demotion applies immediately")
}

func TestLogicalFailureSurfacesMessage(t *testing.T) {
	backend := newUsersBackend()
	backend.registerResp = sdk.ActionResponse{Success: false, Message: "Username already exists"}
	panel, notifier, _ := newPanel(t, backend, sdk.PermissionSet{sdk.PermManageUsers: true})

	_, err := panel.Create("admin", "secret", sdk.PermissionSet{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPermissionChanged)
	require.Equal(t, "Username already exists", notifier.Current().Message)
	require.Equal(t, int64(0), backend.listCalls.Load())
}

func TestFullSet(t *testing.T) {
	full := FullSet(sdk.PermissionSet{sdk.PermShutdown: true})
	require.Len(t, full, len(sdk.PermissionKeys))
	require.True(t, full[sdk.PermShutdown])
	for _, key := range sdk.PermissionKeys {
		if key != sdk.PermShutdown {
			require.False(t, full[key], "key %s should default to false", key)
		}
	}
}
