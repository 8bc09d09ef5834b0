package sdk

import "fmt"

// Action dispatches a one-shot privileged action by its backend name
// (shutdown, restart, lock, play_pause, media_next, media_previous,
// volume_mute).
func (c *Client) Action(name string) (*ActionResponse, error) {
	var resp ActionResponse
	if err := c.post(fmt.Sprintf("/api/action/%s", name), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetVolume requests an absolute output level. The backend may clamp the
// value, so callers re-query Volume afterwards.
func (c *Client) SetVolume(level int) (*ActionResponse, error) {
	var resp ActionResponse
	payload := map[string]int{"level": level}
	if err := c.post("/api/action/set_volume", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Volume reads the authoritative output level and mute state.
func (c *Client) Volume() (*VolumeResponse, error) {
	var resp VolumeResponse
	if err := c.get("/api/volume", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
