package sdk

// Commands fetches the custom command map. An empty map means the backend is
// running on its built-in defaults.
func (c *Client) Commands() (*CommandsResponse, error) {
	var resp CommandsResponse
	if err := c.get("/api/commands", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateCommands replaces the whole command map.
func (c *Client) UpdateCommands(commands map[string]string) (*ActionResponse, error) {
	var resp ActionResponse
	payload := map[string]map[string]string{"commands": commands}
	if err := c.put("/api/commands/update", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetCommands restores the backend defaults.
func (c *Client) ResetCommands() (*ActionResponse, error) {
	var resp ActionResponse
	if err := c.post("/api/commands/reset", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
