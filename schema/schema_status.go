package schema

import "time"

// StoreStatus represents the status of the findings store.
type StoreStatus struct {
	Backend       string               `json:"backend"`
	Connected     bool                 `json:"connected"`
	TotalFindings int                  `json:"total_findings"`
	ByStatus      map[TriageStatus]int `json:"by_status"`
	ByTaxonomy    map[Taxonomy]int     `json:"by_taxonomy"`
	LastID        int64                `json:"last_id"`
	LastCreated   time.Time            `json:"last_created"`
	OldestCreated time.Time            `json:"oldest_created"`
	Repositories  int                  `json:"repositories"`
	SchemaVersion uint                 `json:"schema_version"`
}
