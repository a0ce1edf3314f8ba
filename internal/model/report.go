package model

import "time"

// ItemOutcome classifies the terminal state of one batch item.
type ItemOutcome string

const (
	OutcomeCreated ItemOutcome = "created"
	OutcomeMerged  ItemOutcome = "merged"
	OutcomeSkipped ItemOutcome = "skipped"
	OutcomeErrored ItemOutcome = "errored"
)

// ItemResult records the terminal state of one work item.
type ItemResult struct {
	SourceURL    string      `json:"source_url"`
	Outcome      ItemOutcome `json:"outcome"`
	MasterLeadID string      `json:"master_lead_id,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// RunReport accumulates per-run counts sufficient to reproduce a run's
// outcome without re-deriving it from logs.
type RunReport struct {
	Created   int          `json:"created"`
	Merged    int          `json:"merged"`
	Skipped   int          `json:"skipped"`
	Errored   int          `json:"errored"`
	Items     []ItemResult `json:"items,omitempty"`
	StartedAt time.Time    `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// NewRunReport starts an empty report stamped with the current time.
func NewRunReport() *RunReport {
	return &RunReport{StartedAt: time.Now().UTC()}
}

// Finish records the elapsed wall time.
func (r *RunReport) Finish() {
	r.Elapsed = time.Since(r.StartedAt)
}

// Add records one item result and bumps the matching counter.
func (r *RunReport) Add(item ItemResult) {
	switch item.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeMerged:
		r.Merged++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeErrored:
		r.Errored++
	}
	r.Items = append(r.Items, item)
}

// Total returns the number of items accounted for.
func (r *RunReport) Total() int {
	return r.Created + r.Merged + r.Skipped + r.Errored
}
