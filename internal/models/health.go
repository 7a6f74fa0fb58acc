package models

import "time"

// UpstreamStatus records the latest probe of an external dependency.
type UpstreamStatus struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Healthy   bool      `json:"healthy"`
	Status    int       `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	LatencyMs int64     `json:"latencyMs"`
	CheckedAt time.Time `json:"checkedAt"`
}

// ResourceSample is a point-in-time host and process usage reading.
type ResourceSample struct {
	HostCPUPercent    float64   `json:"hostCpuPercent"`
	HostMemoryPercent float64   `json:"hostMemoryPercent"`
	ProcessRSSBytes   uint64    `json:"processRssBytes"`
	ProcessCPUPercent float64   `json:"processCpuPercent"`
	SampledAt         time.Time `json:"sampledAt"`
}

// Health is the payload of the health endpoint.
type Health struct {
	Status    string           `json:"status"`
	Store     string           `json:"store"`
	Upstreams []UpstreamStatus `json:"upstreams"`
	Resources ResourceSample   `json:"resources"`
}
