package domain

// HealthStatus is the backend-reported cluster status tier.
type HealthStatus string

const (
	// HealthGreen is fully healthy.
	HealthGreen HealthStatus = "green"

	// HealthYellow is degraded but serving.
	HealthYellow HealthStatus = "yellow"

	// HealthRed is failing.
	HealthRed HealthStatus = "red"
)

// Operational reports whether the tier can serve requests.
func (s HealthStatus) Operational() bool {
	return s == HealthGreen || s == HealthYellow
}

// ClusterHealth is a snapshot of backend health.
type ClusterHealth struct {
	ClusterName         string       `json:"cluster_name"`
	Status              HealthStatus `json:"status"`
	TimedOut            bool         `json:"timed_out"`
	NumberOfNodes       int          `json:"number_of_nodes"`
	ActivePrimaryShards int          `json:"active_primary_shards"`
	ActiveShards        int          `json:"active_shards"`
}

// BackendInfo identifies the backend.
type BackendInfo struct {
	ClusterName string `json:"cluster_name"`
	Version     string `json:"version"`
}

// HealthReport combines cluster and index state.
type HealthReport struct {
	Backend       BackendInfo   `json:"backend"`
	Cluster       ClusterHealth `json:"cluster"`
	Index         string        `json:"index"`
	IndexExists   bool          `json:"index_exists"`
	DocumentCount int64         `json:"document_count"`
}
