package users

import (
	"errors"
	"fmt"
	"strings"

	"syspilot/internal/notify"
	"syspilot/internal/permission"
	"syspilot/internal/session"
	"syspilot/pkg/sdk"
)

// ErrPermissionChanged means the acting admin's own rights changed while the
// call was in flight. The session has been resynchronized; the mutation must
// not be presented as having succeeded.
var ErrPermissionChanged = errors.New("permissions changed, session resynchronized")

// ValidationError is a missing-field rejection raised before any network
// call, shown in the originating form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Panel is the user administration service: CRUD over other users'
// permission sets. The user list is always re-fetched from the backend, on
// open and after every mutation, never locally patched.
type Panel struct {
	client   *sdk.Client
	gate     *permission.Gate
	notifier *notify.Notifier
	session  *session.Manager
}

func NewPanel(client *sdk.Client, gate *permission.Gate, notifier *notify.Notifier, mgr *session.Manager) *Panel {
	return &Panel{client: client, gate: gate, notifier: notifier, session: mgr}
}

// List fetches the current user list.
func (p *Panel) List() ([]sdk.User, error) {
	if !p.gate.Has(sdk.PermManageUsers) {
		return nil, p.denied()
	}

	resp, err := p.client.Users()
	if err != nil {
		return nil, p.handleCallError(err)
	}
	if resp.PermissionChange {
		return nil, p.resync(resp.Message)
	}
	if !resp.Success {
		return nil, fmt.Errorf("list users: %s", orDefault(resp.Message, "request rejected"))
	}
	return resp.Users, nil
}

// Create registers a new user with a full permission specification
// (unchecked keys are explicit false, not omissions) and returns the
// re-fetched list.
func (p *Panel) Create(username, password string, perms sdk.PermissionSet) ([]sdk.User, error) {
	if !p.gate.Has(sdk.PermManageUsers) {
		return nil, p.denied()
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Message: "Username is required."}
	}
	if password == "" {
		return nil, &ValidationError{Message: "Password is required."}
	}

	resp, err := p.client.RegisterUser(username, password, FullSet(perms))
	if err != nil {
		return nil, p.handleCallError(err)
	}
	if resp.PermissionChange {
		return nil, p.resync(resp.Message)
	}
	if !resp.Success {
		p.notifier.Errorf(orDefault(resp.Message, "Couldn't create the user."))
		return nil, fmt.Errorf("create user: %s", resp.Message)
	}

	p.notifier.Successf(orDefault(resp.Message, fmt.Sprintf("User %s created.", username)))
	return p.List()
}

// UpdatePermissions replaces the target user's permission map in full and
// returns the re-fetched list.
func (p *Panel) UpdatePermissions(id int, perms sdk.PermissionSet) ([]sdk.User, error) {
	if !p.gate.Has(sdk.PermManageUsers) {
		return nil, p.denied()
	}

	resp, err := p.client.UpdateUserPermissions(id, FullSet(perms))
	if err != nil {
		return nil, p.handleCallError(err)
	}
	if resp.PermissionChange {
		return nil, p.resync(resp.Message)
	}
	if !resp.Success {
		p.notifier.Errorf(orDefault(resp.Message, "Couldn't update permissions."))
		return nil, fmt.Errorf("update permissions: %s", resp.Message)
	}

	p.notifier.Successf(orDefault(resp.Message, "Permissions updated."))
	return p.List()
}

// Delete removes a user and returns the re-fetched list. Confirmation
// (naming the username) is the caller's responsibility; deletion is
// irreversible.
func (p *Panel) Delete(id int) ([]sdk.User, error) {
	if !p.gate.Has(sdk.PermManageUsers) {
		return nil, p.denied()
	}

	resp, err := p.client.DeleteUser(id)
	if err != nil {
		return nil, p.handleCallError(err)
	}
	if resp.PermissionChange {
		return nil, p.resync(resp.Message)
	}
	if !resp.Success {
		p.notifier.Errorf(orDefault(resp.Message, "Couldn't delete the user."))
		return nil, fmt.Errorf("delete user: %s", resp.Message)
	}

	p.notifier.Successf(orDefault(resp.Message, "User deleted."))
	return p.List()
}

func (p *Panel) denied() error {
	p.notifier.Errorf("You don't have permission to manage users.")
	return errors.New("manage_users not granted")
}

func (p *Panel) resync(message string) error {
	p.notifier.Infof(orDefault(message, "Your permissions were updated."))
	p.session.Resync()
	return ErrPermissionChanged
}

func (p *Panel) handleCallError(err error) error {
	var statusErr *sdk.StatusError
	switch {
	case errors.Is(err, sdk.ErrUnauthorized):
		p.session.Invalidate("Session expired. Please log in again.")
	case errors.Is(err, sdk.ErrForbidden):
		msg := "The server denied this request."
		if errors.As(err, &statusErr) && statusErr.Message != "" {
			msg = statusErr.Message
		}
		p.notifier.Errorf(msg)
	case errors.As(err, &statusErr):
		p.notifier.Errorf(orDefault(statusErr.Message, "The server rejected the request."))
	default:
		p.notifier.Errorf("Network error. The request was not completed.")
	}
	return err
}

// FullSet expands a possibly sparse permission map into a full
// specification over every known key, defaulting to false.
func FullSet(perms sdk.PermissionSet) sdk.PermissionSet {
	full := make(sdk.PermissionSet, len(sdk.PermissionKeys))
	for _, key := range sdk.PermissionKeys {
		full[key] = perms[key]
	}
	return full
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
