package models

// RouteInfo describes one public endpoint for the self-describing route list.
type RouteInfo struct {
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Description string   `json:"description"`
	Required    []string `json:"required_params"`
	Optional    []string `json:"optional_params"`
}

// HealthStatus is the body of a successful health check.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// VersionInfo is the body of the version endpoint.
type VersionInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}
