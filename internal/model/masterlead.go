package model

import "time"

// MasterLead is the canonical, deduplicated business entity. Identity is
// independent of any single source record; the attribute map is the
// superset of all contributing records' normalized fields.
type MasterLead struct {
	ID          string         `json:"id"`
	CompanyName string         `json:"company_name"`
	Phone       string         `json:"phone,omitempty"` // matching key, normalized digits
	Address     string         `json:"address,omitempty"`
	Source      string         `json:"source"` // provenance of most recent authoritative write
	Attributes  map[string]any `json:"attributes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SourceLink ties one observed source URL within a scope to its master
// lead. One link per (source_url, scope); re-extractions replace the
// record snapshot instead of creating duplicates.
type SourceLink struct {
	ID           string    `json:"id"`
	SourceURL    string    `json:"source_url"`
	Scope        string    `json:"scope"` // opaque tenant/organization key
	MasterLeadID string    `json:"master_lead_id"`
	Record       *Record   `json:"record,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
