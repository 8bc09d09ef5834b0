package sdk

import "fmt"

func (c *Client) Users() (*UsersResponse, error) {
	var resp UsersResponse
	if err := c.get("/api/users", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RegisterUser(username, password string, permissions PermissionSet) (*ActionResponse, error) {
	var resp ActionResponse
	req := RegisterRequest{Username: username, Password: password, Permissions: permissions}
	if err := c.post("/api/users/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateUserPermissions replaces the target user's permission map in full.
func (c *Client) UpdateUserPermissions(id int, permissions PermissionSet) (*ActionResponse, error) {
	var resp ActionResponse
	payload := map[string]PermissionSet{"permissions": permissions}
	if err := c.put(fmt.Sprintf("/api/users/update_permissions/%d", id), payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteUser(id int) (*ActionResponse, error) {
	var resp ActionResponse
	if err := c.delete(fmt.Sprintf("/api/users/delete/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
