package domain

import (
	"time"

	"github.com/google/uuid"
)

// DatasetResult is the outcome of syncing one dataset.
type DatasetResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SyncReport summarises one Sync Job invocation.
type SyncReport struct {
	ID         uuid.UUID                 `json:"id"`
	StartedAt  time.Time                 `json:"startedAt"`
	FinishedAt time.Time                 `json:"syncedAt"`
	Results    map[Dataset]DatasetResult `json:"results"`
}

// Failed returns how many datasets did not sync.
func (r SyncReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Success {
			n++
		}
	}
	return n
}

// DatasetStatus is the per-dataset part of the sync status summary.
type DatasetStatus struct {
	Cached bool `json:"cached"`
	Count  int  `json:"count"`
}

// SyncStatus answers "when did we last sync and what is cached".
type SyncStatus struct {
	LastSync *time.Time                `json:"lastSync"`
	Datasets map[Dataset]DatasetStatus `json:"datasets"`
}
