package commands

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

type commandsBackend struct {
	mu         sync.Mutex
	commands   map[string]string
	updateResp sdk.ActionResponse
	resetResp  sdk.ActionResponse
	listCalls  atomic.Int64
	dashCalls  atomic.Int64
	lastUpdate map[string]string
}

func newCommandsBackend() *commandsBackend {
	return &commandsBackend{
		commands:   map[string]string{},
		updateResp: sdk.ActionResponse{Success: true, Message: "Commands updated"},
		resetResp:  sdk.ActionResponse{Success: true, Message: "Commands reset"},
	}
}

func (b *commandsBackend) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/commands", func(w http.ResponseWriter, r *http.Request) {
		b.listCalls.Add(1)
		b.mu.Lock()
		cmds := b.commands
		b.mu.Unlock()
		json.NewEncoder(w).Encode(sdk.CommandsResponse{Success: true, Commands: cmds})
	})
	mux.HandleFunc("/api/commands/update", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.lastUpdate = req["commands"]
		b.commands = req["commands"]
		resp := b.updateResp
		b.mu.Unlock()
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/commands/reset", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.commands = map[string]string{}
		resp := b.resetResp
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

func newCmdPanel(t *testing.T, backend *commandsBackend, modify bool, osType string) (*Panel, *notify.Notifier) {
	t.Helper()
	client := sdk.NewClient(backend.serve(t).URL)
	gate := permission.NewGate()
	gate.Update(sdk.PermissionSet{sdk.PermModifyCommands: modify})
	gate.UpdatePlatform(osType)
	notifier := notify.New(time.Minute)
	mgr := session.NewManager(client, gate, notifier)
	return NewPanel(client, gate, notifier, mgr), notifier
}

func TestCompositeGateBlocksPanel(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify bool
		osType string
	}{
		{"no permission", false, "Linux"},
		{"wrong platform", true, "Windows"},
		{"neither", false, "Windows"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			backend := newCommandsBackend()
			panel, _ := newCmdPanel(t, backend, tc.modify, tc.osType)
			_, err := panel.List()
			require.Error(t, err)
			require.Equal(t, int64(0), backend.listCalls.Load())
		})
	}
}

func TestListEmptyMeansDefaults(t *testing.T) {
	backend := newCommandsBackend()
	panel, _ := newCmdPanel(t, backend, true, "Linux")

	cmds, err := panel.List()
	require.NoError(t, err)
	require.NotNil(t, cmds, "empty map renders as a defaults placeholder, never nil")
	require.Empty(t, cmds)
}

func TestSaveTrimsAndDropsUnknownKeys(t *testing.T) {
	backend := newCommandsBackend()
	panel, _ := newCmdPanel(t, backend, true, "Linux")

	_, err := panel.Save(map[string]string{
		"shutdown_cmd": "  systemctl poweroff  ",
		"lock_cmd":     "",
		"bogus_cmd":    "rm -rf /",
	})
	require.NoError(t, err)

	backend.mu.Lock()
	sent := backend.lastUpdate
	backend.mu.Unlock()
	require.Equal(t, "systemctl poweroff", sent["shutdown_cmd"])
	require.Contains(t, sent, "lock_cmd", "empty values are permitted, validation is the backend's contract")
	require.Equal(t, "", sent["lock_cmd"])
	require.NotContains(t, sent, "bogus_cmd")
}

func TestSaveReloadsList(t *testing.T) {
	backend := newCommandsBackend()
	panel, notifier := newCmdPanel(t, backend, true, "Linux")

	cmds, err := panel.Save(map[string]string{"shutdown_cmd": "systemctl poweroff"})
	require.NoError(t, err)
	require.Equal(t, "systemctl poweroff", cmds["shutdown_cmd"])
	require.Equal(t, int64(1), backend.listCalls.Load())
	require.Equal(t, notify.Success, notifier.Current().Severity)
}

func TestResetRestoresDefaultsAndReloads(t *testing.T) {
	backend := newCommandsBackend()
	backend.commands = map[string]string{"shutdown_cmd": "custom"}
	panel, _ := newCmdPanel(t, backend, true, "Linux")

	cmds, err := panel.Reset()
	require.NoError(t, err)
	require.Empty(t, cmds)
	require.Equal(t, int64(1), backend.listCalls.Load())
}

func TestSavePermissionChangeResyncs(t *testing.T) {
	backend := newCommandsBackend()
	backend.updateResp = sdk.ActionResponse{Success: true, PermissionChange: true}
	panel, notifier := newCmdPanel(t, backend, true, "Linux")

	_, err := panel.Save(map[string]string{"shutdown_cmd": "x"})
	require.ErrorIs(t, err, ErrPermissionChanged)
	require.Equal(t, int64(1), backend.dashCalls.Load())
	require.Equal(t, int64(0), backend.listCalls.Load(), "aborted save must not reload")
	require.Equal(t, notify.Info, notifier.Current().Severity)
}

func TestCatalogueAndLabelsAgree(t *testing.T) {
	require.Len(t, Labels, len(Catalogue))
	for _, key := range Catalogue {
		require.Contains(t, Labels, key)
	}
}
