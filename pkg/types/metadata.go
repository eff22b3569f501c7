package types

// ServerMetadata holds basic information about the topicmux server itself.
type ServerMetadata struct {
	Version string `json:"version"`
}

// StatusResponse is returned by the status API endpoint.
type StatusResponse struct {
	ActiveSessions int    `json:"active_sessions"`
	Version        string `json:"version"`
}
