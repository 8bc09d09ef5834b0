package sdk

// Login posts credentials. A 401 carries the backend's rejection message and
// is returned as a StatusError; the caller decides whether that is a bad
// login or a dead session.
func (c *Client) Login(username, password string) (*ActionResponse, error) {
	var resp ActionResponse
	err := c.post("/api/login", LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the backend to drop the session cookie. Callers clear local
// state regardless of the outcome.
func (c *Client) Logout() error {
	return c.post("/api/logout", nil, nil)
}

// DashboardData fetches the telemetry snapshot and the caller's current
// permission set in one poll.
func (c *Client) DashboardData() (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := c.get("/api/dashboard-data", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
