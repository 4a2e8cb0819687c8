package types

// ModelsResponse wraps the manifest collection returned by GET /models.
type ModelsResponse struct {
	Models []ModelDescriptor `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: run already in progress
	Error string `json:"error" example:"run already in progress"`
	// HTTP status code.
	// example: 409
	Code int `json:"code" example:"409"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall daemon state: idle, running.
	// example: idle
	State string `json:"state" example:"idle"`
	// Number of loaded manifests.
	// example: 12
	Models int `json:"models" example:"12"`
	// Total file entries across all manifests.
	// example: 31
	Entries int `json:"entries" example:"31"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total runs completed since start.
	// example: 3
	RunsTotal uint64 `json:"runs_total" example:"3"`
	// Summary of the most recent run, if any.
	LastRun *RunReport `json:"last_run,omitempty"`
}
