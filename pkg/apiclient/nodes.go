package apiclient

import "time"

// Node represents a storage node as seen by the coordinator's cluster
// membership table.
type Node struct {
	ID          string    `json:"id"`
	IP          string    `json:"ip"`
	ClientPort  int       `json:"client_port"`
	ControlPort int       `json:"control_port"`
	FileCount   int       `json:"file_count"`
	Alive       bool      `json:"alive"`
	LastSeen    time.Time `json:"last_seen"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ListNodes returns the current cluster membership.
func (c *Client) ListNodes() ([]Node, error) {
	return listResources[Node](c, "/api/v1/nodes")
}

// GetNode returns a single node record by id.
func (c *Client) GetNode(id string) (*Node, error) {
	return getResource[Node](c, resourcePath("/api/v1/nodes/%s", id))
}
